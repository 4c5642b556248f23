package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	pending []*EventDocument
	sent    []string
	failed  map[string]string
}

func (q *fakeQueue) Claim(context.Context, string) (*EventDocument, error) {
	if len(q.pending) == 0 {
		return nil, nil
	}
	doc := q.pending[0]
	q.pending = q.pending[1:]
	return doc, nil
}

func (q *fakeQueue) MarkSent(_ context.Context, id string) error {
	q.sent = append(q.sent, id)
	return nil
}

func (q *fakeQueue) MarkFailed(_ context.Context, id string, _ time.Time, msg string) error {
	q.failed[id] = msg
	return nil
}

type published struct {
	topic, key string
	payload    []byte
	headers    map[string]string
}

type fakeProducer struct {
	out  []published
	fail bool
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.out = append(p.out, published{topic, key, payload, headers})
	return nil
}

func TestDrainPublishesCloudEvents(t *testing.T) {
	q := &fakeQueue{failed: map[string]string{}, pending: []*EventDocument{
		{ID: "e1", Name: "session.profile_viewed", Aggregate: "s1", Payload: []byte(`{"profile_id":"anna"}`), Headers: map[string]string{"event-name": "session.profile_viewed"}},
		{ID: "e2", Name: "favorites.toggled", Aggregate: "42", Payload: []byte(`{"added":true}`)},
	}}
	p := &fakeProducer{}
	var results []error
	w := &Worker{Queue: q, Producer: p, TopicPrefix: "dev.", OnPublish: func(err error) { results = append(results, err) }}

	require.NoError(t, w.drain(context.Background()))
	assert.Equal(t, []string{"e1", "e2"}, q.sent)
	require.Len(t, p.out, 2)
	assert.Equal(t, "dev.session.events.v1", p.out[0].topic)
	assert.Equal(t, "dev.favorites.events.v1", p.out[1].topic)
	assert.Equal(t, "application/cloudevents+json", p.out[0].headers["content-type"])
	assert.Equal(t, "session.profile_viewed", p.out[0].headers["event-name"])
	assert.Len(t, results, 2)

	var evt map[string]any
	require.NoError(t, json.Unmarshal(p.out[0].payload, &evt))
	assert.Equal(t, "session.profile_viewed.v1", evt["type"])
	assert.Equal(t, "app://storefront", evt["source"])
	assert.Equal(t, "anna", evt["data"].(map[string]any)["profile_id"])
}

func TestFailedPublishIsRescheduled(t *testing.T) {
	q := &fakeQueue{failed: map[string]string{}, pending: []*EventDocument{
		{ID: "e1", Name: "session.age_confirmed", Payload: []byte(`{}`)},
		{ID: "e2", Name: "session.age_confirmed", Payload: []byte(`not json`)},
	}}
	w := &Worker{Queue: q, Producer: &fakeProducer{fail: true}, Backoff: []time.Duration{time.Second}}
	require.NoError(t, w.drain(context.Background()))
	assert.Empty(t, q.sent)
	assert.Equal(t, "broker down", q.failed["e1"])
	assert.Contains(t, q.failed, "e2")
}

func TestRunRequiresDependencies(t *testing.T) {
	assert.ErrorIs(t, (&Worker{}).Run(context.Background()), ErrWorkerNotConfigured)
}
