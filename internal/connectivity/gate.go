package connectivity

import "context"

// Alerter shows a modal notice.
type Alerter interface {
	Alert(ctx context.Context, title, message, okLabel string)
}

// Notice is the text of the blocking "connection required" alert.
type Notice struct {
	Title   string
	Message string
	OK      string
}

// DefaultNotice is shown when no custom text is configured.
var DefaultNotice = Notice{
	Title:   "Internet Connection Required",
	Message: "Please connect to the internet before continuing.",
	OK:      "Ok",
}

// Gate blocks workflows while the probe reports no connection.
// It never retries; the user has to trigger the action again.
type Gate struct {
	probe   Probe
	alerter Alerter
	notice  Notice
}

func NewGate(probe Probe, alerter Alerter, notice Notice) *Gate {
	if notice == (Notice{}) {
		notice = DefaultNotice
	}
	return &Gate{probe: probe, alerter: alerter, notice: notice}
}

// Allow polls the probe once. When disconnected it shows the notice and returns false.
func (g *Gate) Allow(ctx context.Context) bool {
	if g.probe != nil && g.probe.IsConnected(ctx) {
		return true
	}
	if g.alerter != nil {
		g.alerter.Alert(ctx, g.notice.Title, g.notice.Message, g.notice.OK)
	}
	return false
}
