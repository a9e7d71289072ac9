package poller

import (
	"context"
	"errors"
	"testing"

	"github.com/ozzus/fan-predict/internal/domain/models"
	"go.uber.org/zap"
)

type sourceMock struct {
	liveCalls  int
	todayCalls int
}

func (m *sourceMock) Live(context.Context) []models.Match {
	m.liveCalls++
	return []models.Match{{ID: 1, Status: models.StatusLive}}
}

func (m *sourceMock) Today(context.Context) []models.Match {
	m.todayCalls++
	return []models.Match{{ID: 1}, {ID: 2}}
}

type broadcasterMock struct {
	name        string
	subscribers bool
	err         error
	topics      []string
	sizes       []int
}

func (m *broadcasterMock) Name() string {
	return m.name
}

func (m *broadcasterMock) HasSubscribers(context.Context) bool {
	return m.subscribers
}

func (m *broadcasterMock) Publish(_ context.Context, topic string, matches []models.Match) error {
	m.topics = append(m.topics, topic)
	m.sizes = append(m.sizes, len(matches))
	return m.err
}

func TestPollOnce_SkipsWithoutSubscribers(t *testing.T) {
	source := &sourceMock{}
	ws := &broadcasterMock{name: "ws"}
	p := New(zap.NewNop(), source, 0, ws)

	if n := p.PollOnce(context.Background()); n != 0 {
		t.Fatalf("expected nothing published, got %d", n)
	}
	if source.liveCalls != 0 || source.todayCalls != 0 {
		t.Fatalf("expected no provider reads, got %d/%d", source.liveCalls, source.todayCalls)
	}
}

func TestPollOnce_PublishesToActiveBroadcasters(t *testing.T) {
	source := &sourceMock{}
	ws := &broadcasterMock{name: "ws", subscribers: true}
	redis := &broadcasterMock{name: "redis"}
	p := New(zap.NewNop(), source, 0, ws, redis)

	if n := p.PollOnce(context.Background()); n != 2 {
		t.Fatalf("expected 2 publishes, got %d", n)
	}
	if source.liveCalls != 1 || source.todayCalls != 1 {
		t.Fatalf("expected one live and one today read, got %d/%d", source.liveCalls, source.todayCalls)
	}
	if len(ws.topics) != 2 || ws.topics[0] != "live" || ws.topics[1] != "today" {
		t.Fatalf("unexpected topics %v", ws.topics)
	}
	if ws.sizes[0] != 1 || ws.sizes[1] != 2 {
		t.Fatalf("unexpected payload sizes %v", ws.sizes)
	}
	if len(redis.topics) != 0 {
		t.Fatalf("expected idle broadcaster skipped, got %v", redis.topics)
	}
}

func TestPollOnce_PublishErrorDoesNotStopOthers(t *testing.T) {
	source := &sourceMock{}
	broken := &broadcasterMock{name: "redis", subscribers: true, err: errors.New("conn refused")}
	ws := &broadcasterMock{name: "ws", subscribers: true}
	p := New(zap.NewNop(), source, 0, broken, ws)

	if n := p.PollOnce(context.Background()); n != 2 {
		t.Fatalf("expected ws publishes to succeed, got %d", n)
	}
	if len(broken.topics) != 2 {
		t.Fatalf("expected both topics attempted on broken broadcaster, got %v", broken.topics)
	}
}
