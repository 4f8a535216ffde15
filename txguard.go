package ygggo_session

// TxGuard remembers the connection a transaction started on. Once the
// session reconnects, the server has rolled the transaction back and
// the caller must forget it.
type TxGuard struct {
	meta  *connMeta
	epoch uint64
}

// BeginGuard captures the current epoch. Call it right after BEGIN succeeds.
func (s *Session) BeginGuard() *TxGuard {
	return &TxGuard{meta: s.meta, epoch: s.meta.epoch.Load()}
}

// Lost reports whether the connection the transaction ran on is gone.
func (g *TxGuard) Lost() bool {
	return g.meta.state.Load() != StateConnected || g.meta.epoch.Load() != g.epoch
}

func (g *TxGuard) Epoch() uint64 { return g.epoch }
