package connectivity

import (
	"context"
	"testing"
)

type alertSpy struct {
	titles   []string
	messages []string
}

func (a *alertSpy) Alert(_ context.Context, title, message, _ string) {
	a.titles = append(a.titles, title)
	a.messages = append(a.messages, message)
}

func TestGateAllowsWhenConnected(t *testing.T) {
	spy := &alertSpy{}
	g := NewGate(Static(true), spy, Notice{})
	if !g.Allow(context.Background()) {
		t.Fatalf("expected allow when connected")
	}
	if len(spy.titles) != 0 {
		t.Fatalf("no notice expected, got %v", spy.titles)
	}
}

func TestGateShowsNoticeWhenDisconnected(t *testing.T) {
	spy := &alertSpy{}
	g := NewGate(Static(false), spy, Notice{})
	if g.Allow(context.Background()) {
		t.Fatalf("expected deny when disconnected")
	}
	if len(spy.titles) != 1 || spy.titles[0] != DefaultNotice.Title || spy.messages[0] != DefaultNotice.Message {
		t.Fatalf("unexpected notice: %v %v", spy.titles, spy.messages)
	}
}

func TestGatePollsEveryCall(t *testing.T) {
	calls := 0
	online := false
	g := NewGate(Func(func(context.Context) bool { calls++; return online }), &alertSpy{}, Notice{})
	g.Allow(context.Background())
	online = true
	if !g.Allow(context.Background()) {
		t.Fatalf("second poll should see connection")
	}
	if calls != 2 {
		t.Fatalf("expected 2 probe calls, got %d", calls)
	}
}
