package ygggo_session

import "time"

// startHeartbeat sends a PingCommand every interval until stop closes or
// the mailbox refuses it. It never touches the connection itself.
func startHeartbeat(box *mailbox, interval time.Duration, stop <-chan struct{}) {
	if interval <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				if !box.send(PingCommand{}) {
					return
				}
			}
		}
	}()
}
