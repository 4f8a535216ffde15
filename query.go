package ygggo_session

import (
	"fmt"
	"reflect"
)

// QueryKind selects what a query returns.
type QueryKind uint8

const (
	// QueryRun executes and discards any result metadata.
	QueryRun QueryKind = iota
	// QueryExecute returns affected rows and the last insert id.
	QueryExecute
	// QueryFetchOne returns at most one row.
	QueryFetchOne
	// QueryFetchAll returns every row in server order.
	QueryFetchAll
)

func (k QueryKind) String() string {
	switch k {
	case QueryRun:
		return "run"
	case QueryExecute:
		return "execute"
	case QueryFetchOne:
		return "fetch_one"
	case QueryFetchAll:
		return "fetch_all"
	}
	return fmt.Sprintf("QueryKind(%d)", uint8(k))
}

// ParamKind is the bind kind of a Param.
type ParamKind uint8

const (
	ParamBool ParamKind = iota
	ParamNumber
	ParamBytes
)

// Param is one positional bind parameter.
type Param struct {
	kind ParamKind
	b    bool
	n    float64
	s    []byte
}

func BoolParam(v bool) Param      { return Param{kind: ParamBool, b: v} }
func NumberParam(v float64) Param { return Param{kind: ParamNumber, n: v} }
func BytesParam(v []byte) Param   { return Param{kind: ParamBytes, s: v} }
func StringParam(v string) Param  { return Param{kind: ParamBytes, s: []byte(v)} }

func (p Param) Kind() ParamKind { return p.kind }

// arg is the value handed to database/sql.
func (p Param) arg() any {
	switch p.kind {
	case ParamBool:
		return p.b
	case ParamNumber:
		return p.n
	}
	return p.s
}

// ParamOf converts a Go value into a Param. Integers and floats become
// numbers, strings and byte slices become bytes.
func ParamOf(v any) (Param, error) {
	switch x := v.(type) {
	case Param:
		return x, nil
	case bool:
		return BoolParam(x), nil
	case string:
		return StringParam(x), nil
	case []byte:
		return BytesParam(x), nil
	case float64:
		return NumberParam(x), nil
	case float32:
		return NumberParam(float64(x)), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NumberParam(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return NumberParam(float64(rv.Uint())), nil
	}
	return Param{}, fmt.Errorf("%w: parameter of type %T", ErrUnsupportedType, v)
}

// Outcome is the result of a successful query. Which fields are set
// depends on Kind.
type Outcome struct {
	Kind         QueryKind
	RowsAffected uint64
	LastInsertID uint64
	Rows         []Row // QueryFetchAll, never nil
	Row          Row   // QueryFetchOne, nil when nothing matched
}

// QueryCallback receives the outcome of a query, or its failure.
type QueryCallback func(Outcome, error)

// ErrorObserver is told about every failed query together with the
// request's trace token.
type ErrorObserver func(err *Error, trace any)

// QueryRequest is the Command that runs SQL on the live connection.
type QueryRequest struct {
	Query    string
	Kind     QueryKind
	Params   []Param
	Callback QueryCallback
	OnError  ErrorObserver
	Raw      bool
	Trace    any

	// argErr holds a parameter conversion failure from WithArgs.
	argErr error
}

func (*QueryRequest) command() {}

// QueryOption configures a QueryRequest.
type QueryOption func(*QueryRequest)

// WithParams appends typed parameters.
func WithParams(params ...Param) QueryOption {
	return func(r *QueryRequest) { r.Params = append(r.Params, params...) }
}

// WithArgs appends Go values converted through ParamOf. A value that
// cannot be converted fails the query when it runs.
func WithArgs(args ...any) QueryOption {
	return func(r *QueryRequest) {
		for _, a := range args {
			p, err := ParamOf(a)
			if err != nil {
				if r.argErr == nil {
					r.argErr = err
				}
				continue
			}
			r.Params = append(r.Params, p)
		}
	}
}

func WithCallback(cb QueryCallback) QueryOption {
	return func(r *QueryRequest) { r.Callback = cb }
}

func WithErrorObserver(fn ErrorObserver) QueryOption {
	return func(r *QueryRequest) { r.OnError = fn }
}

// WithRaw executes the text verbatim, ignoring parameters.
func WithRaw() QueryOption {
	return func(r *QueryRequest) { r.Raw = true }
}

// WithTrace attaches an opaque token passed to the error observer.
func WithTrace(token any) QueryOption {
	return func(r *QueryRequest) { r.Trace = token }
}

// NewQuery builds a request of the given kind.
func NewQuery(kind QueryKind, query string, opts ...QueryOption) *QueryRequest {
	r := &QueryRequest{Query: query, Kind: kind}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *QueryRequest) args() []any {
	if r.Raw || len(r.Params) == 0 {
		return nil
	}
	out := make([]any, len(r.Params))
	for i, p := range r.Params {
		out[i] = p.arg()
	}
	return out
}
