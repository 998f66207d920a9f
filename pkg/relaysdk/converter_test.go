package relaysdk

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testJob = Job{Criteria: "Given a cart, when I pay, then I get a receipt", Agent: "gemini", OutputFormat: "gherkin"}

func newTestConverter(f *fakeRelay, prompter SecretPrompter) *Converter {
	client := f.client()
	conv := NewConverter(client, NewSession(client, nil, prompter))
	conv.PollInterval = 10 * time.Millisecond
	conv.AwaitTimeout = 5 * time.Second
	return conv
}

func TestConverter_Direct(t *testing.T) {
	f := newFakeRelay(t)
	f.reply = `{"text":"Feature: checkout"}`

	out, err := newTestConverter(f, StaticSecret(testSecret)).Submit(t.Context(), testJob)
	require.NoError(t, err)
	require.Equal(t, StatusDelivered, out.Status)
	require.Equal(t, ViaDirect, out.Via)
	require.Equal(t, "Feature: checkout", out.Text())

	require.Equal(t, 1, f.convertCount())
	req := f.lastConvert()
	require.Equal(t, testJob.Criteria, req.AcceptanceCriteria)
	require.Equal(t, "gemini", req.AIAgent)
	require.Equal(t, "gherkin", req.OutputFormat)
}

func TestConverter_ForcedAsyncIgnoresReply(t *testing.T) {
	f := newFakeRelay(t)
	f.reply = `{"text":"ack"}`
	f.onConvert = func(tok string) { f.publish(tok, `{"text":"final"}`) }

	conv := newTestConverter(f, StaticSecret(testSecret))
	conv.Mode = ModeAsync

	out, err := conv.Submit(t.Context(), testJob)
	require.NoError(t, err)
	require.Equal(t, "final", out.Text())
}

func TestConverter_Push(t *testing.T) {
	f := newFakeRelay(t)
	f.onConvert = func(tok string) {
		go func() {
			time.Sleep(20 * time.Millisecond)
			f.publish(tok, `{"text":"via push"}`)
		}()
	}

	conv := newTestConverter(f, StaticSecret(testSecret))
	conv.PollInterval = time.Hour

	out, err := conv.Submit(t.Context(), testJob)
	require.NoError(t, err)
	require.Equal(t, StatusDelivered, out.Status)
	require.Equal(t, ViaPush, out.Via)
	require.Equal(t, "via push", out.Text())
}

func TestConverter_ConsecutiveSubmissions(t *testing.T) {
	f := newFakeRelay(t)
	f.onConvert = func(tok string) {
		req := f.lastConvert()
		go func() {
			time.Sleep(20 * time.Millisecond)
			f.publish(tok, `{"text":"result for `+req.AcceptanceCriteria+`"}`)
		}()
	}
	conv := newTestConverter(f, StaticSecret(testSecret))

	for _, criteria := range []string{"A", "B"} {
		out, err := conv.Submit(t.Context(), Job{Criteria: criteria})
		require.NoError(t, err)
		require.Equal(t, "result for "+criteria, out.Text())
	}
	require.Equal(t, 1, f.issuedCount())
}

func TestConverter_PollWhenPushUnavailable(t *testing.T) {
	f := newFakeRelay(t)
	f.noEvents = true
	f.onConvert = func(tok string) {
		go func() {
			time.Sleep(30 * time.Millisecond)
			f.publish(tok, `{"message":"via poll"}`)
		}()
	}

	out, err := newTestConverter(f, StaticSecret(testSecret)).Submit(t.Context(), testJob)
	require.NoError(t, err)
	require.Equal(t, ViaPoll, out.Via)
	require.Equal(t, "via poll", out.Text())
}

func TestConverter_RetriesOnceAfter401(t *testing.T) {
	f := newFakeRelay(t)
	f.reply = `{"text":"ok"}`

	var prompts atomic.Int32
	conv := newTestConverter(f, countingPrompter(testSecret, &prompts))

	_, err := conv.Session.GetValid(t.Context())
	require.NoError(t, err)
	f.revokeAll()

	out, err := conv.Submit(t.Context(), testJob)
	require.NoError(t, err)
	require.Equal(t, "ok", out.Text())
	require.EqualValues(t, 2, prompts.Load())
	require.Equal(t, 2, f.issuedCount())
	require.Equal(t, 1, f.convertCount())
}

func TestConverter_Second401IsTerminal(t *testing.T) {
	f := newFakeRelay(t)
	f.denyAll = true

	var prompts atomic.Int32
	_, err := newTestConverter(f, countingPrompter(testSecret, &prompts)).Submit(t.Context(), testJob)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.EqualValues(t, 2, prompts.Load())
}

func TestConverter_NoSecret(t *testing.T) {
	f := newFakeRelay(t)

	_, err := newTestConverter(f, StaticSecret("")).Submit(t.Context(), testJob)
	require.ErrorIs(t, err, ErrNoSecretProvided)
	require.Zero(t, f.convertCount())
}

func TestConverter_TimesOut(t *testing.T) {
	f := newFakeRelay(t)

	conv := newTestConverter(f, StaticSecret(testSecret))
	conv.AwaitTimeout = 100 * time.Millisecond

	out, err := conv.Submit(t.Context(), testJob)
	require.NoError(t, err)
	require.Equal(t, StatusTimedOut, out.Status)
	require.Equal(t, TimeoutMessage, out.Text())
}

func TestConverter_PollUnauthorizedIsTerminal(t *testing.T) {
	f := newFakeRelay(t)
	f.noEvents = true
	f.onConvert = func(string) { f.revokeAll() }

	_, err := newTestConverter(f, StaticSecret(testSecret)).Submit(t.Context(), testJob)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestConverter_NewSubmissionSupersedes(t *testing.T) {
	f := newFakeRelay(t)
	conv := newTestConverter(f, StaticSecret(testSecret))
	conv.PollInterval = time.Hour

	type result struct {
		out Outcome
		err error
	}
	first := make(chan result, 1)
	go func() {
		out, err := conv.Submit(context.Background(), testJob)
		first <- result{out, err}
	}()

	// Wait until submission A is parked on its push subscription.
	require.Eventually(t, func() bool { return f.waiting("tok-1") == 1 }, 2*time.Second, 5*time.Millisecond)

	f.setOnConvert(func(tok string) {
		go func() {
			time.Sleep(20 * time.Millisecond)
			f.publish(tok, `{"text":"B"}`)
		}()
	})
	out, err := conv.Submit(t.Context(), Job{Criteria: "B", Agent: "gemini", OutputFormat: "gherkin"})
	require.NoError(t, err)
	require.Equal(t, "B", out.Text())

	select {
	case a := <-first:
		require.ErrorIs(t, a.err, ErrSuperseded)
		require.Empty(t, a.out.Text())
	case <-time.After(2 * time.Second):
		t.Fatal("superseded submission did not return")
	}
}

func TestConverter_Cancel(t *testing.T) {
	f := newFakeRelay(t)
	conv := newTestConverter(f, StaticSecret(testSecret))

	done := make(chan error, 1)
	go func() {
		_, err := conv.Submit(context.Background(), testJob)
		done <- err
	}()

	require.Eventually(t, func() bool { return f.waiting("tok-1") == 1 }, 2*time.Second, 5*time.Millisecond)
	conv.Cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled submission did not return")
	}
}

func TestConverter_RequiresCriteria(t *testing.T) {
	f := newFakeRelay(t)
	_, err := newTestConverter(f, StaticSecret(testSecret)).Submit(t.Context(), Job{Criteria: "  "})
	require.Error(t, err)
	require.Zero(t, f.issuedCount())
}
