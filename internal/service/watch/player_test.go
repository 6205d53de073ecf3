package watch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPauseResumeRoundTrip(t *testing.T) {
	h := newHarness(t)
	show := testShow(1, "orion", 10*time.Second, h.clock.Now())
	h.svc.createRoom(show, nil)
	h.join(t, "orion", "op", "kim", testOperatorToken)
	h.goOnline(t, show.Id)

	h.clock.Advance(12 * time.Second)

	require.NoError(t, h.svc.HandleVideoAction(context.Background(), "op", VideoActionParams{
		PassCode: "orion",
		Action:   VideoActionPause,
	}))

	r := h.svc.rooms[show.Id]
	require.False(t, r.playing)
	require.InDelta(t, 12.0, r.progress, 0.001)

	// no wall-clock time elapses between pause and resume
	require.NoError(t, h.svc.HandleVideoAction(context.Background(), "op", VideoActionParams{
		PassCode: "orion",
		Action:   VideoActionResume,
	}))

	require.True(t, r.playing)
	require.InDelta(t, 12.0, r.currentProgress(h.clock.Now()), 0.001)

	actions := h.sender.messagesOfType(messageTypeVideoAction)
	require.Len(t, actions, 2)
}

func TestPauseWhilePausedIsNoOp(t *testing.T) {
	h := newHarness(t)
	show := testShow(1, "orion", 10*time.Second, h.clock.Now())
	h.svc.createRoom(show, nil)
	h.join(t, "orion", "op", "kim", testOperatorToken)
	h.goOnline(t, show.Id)

	require.NoError(t, h.svc.HandleVideoAction(context.Background(), "op", VideoActionParams{
		PassCode: "orion",
		Action:   VideoActionPause,
	}))
	h.sender.reset()

	require.NoError(t, h.svc.HandleVideoAction(context.Background(), "op", VideoActionParams{
		PassCode: "orion",
		Action:   VideoActionPause,
	}))

	require.Empty(t, h.sender.messagesOfType(messageTypeVideoAction))
}

func TestSlideSetsProgressRegardlessOfPlayState(t *testing.T) {
	h := newHarness(t)
	show := testShow(1, "orion", 10*time.Second, h.clock.Now())
	h.svc.createRoom(show, nil)
	h.join(t, "orion", "op", "kim", testOperatorToken)
	h.goOnline(t, show.Id)

	r := h.svc.rooms[show.Id]

	require.NoError(t, h.svc.HandleVideoAction(context.Background(), "op", VideoActionParams{
		PassCode: "orion",
		Action:   VideoActionSlide,
		To:       42.5,
	}))
	require.True(t, r.playing)
	require.InDelta(t, 42.5, r.currentProgress(h.clock.Now()), 0.001)

	require.NoError(t, h.svc.HandleVideoAction(context.Background(), "op", VideoActionParams{
		PassCode: "orion",
		Action:   VideoActionPause,
	}))
	require.NoError(t, h.svc.HandleVideoAction(context.Background(), "op", VideoActionParams{
		PassCode: "orion",
		Action:   VideoActionSlide,
		To:       7.25,
	}))
	require.False(t, r.playing)
	require.InDelta(t, 7.25, r.currentProgress(h.clock.Now()), 0.001)
}

func TestSlideBeforeOnlineIsNoOp(t *testing.T) {
	h := newHarness(t)
	show := testShow(1, "orion", time.Hour, h.clock.Now())
	h.svc.createRoom(show, nil)
	h.join(t, "orion", "op", "kim", testOperatorToken)
	h.sender.reset()

	require.NoError(t, h.svc.HandleVideoAction(context.Background(), "op", VideoActionParams{
		PassCode: "orion",
		Action:   VideoActionSlide,
		To:       30,
	}))

	require.Empty(t, h.sender.messagesOfType(messageTypeVideoAction))
}

func TestUnprivilegedVideoActionDroppedSilently(t *testing.T) {
	h := newHarness(t)
	show := testShow(1, "orion", 10*time.Second, h.clock.Now())
	h.svc.createRoom(show, nil)
	h.join(t, "orion", "viewer", "kim", "")
	h.goOnline(t, show.Id)
	h.sender.reset()

	require.NoError(t, h.svc.HandleVideoAction(context.Background(), "viewer", VideoActionParams{
		PassCode: "orion",
		Action:   VideoActionPause,
	}))

	r := h.svc.rooms[show.Id]
	require.True(t, r.playing)
	require.Empty(t, h.sender.messagesOfType(messageTypeVideoAction))
}

func TestManualPauseCancelsActiveVote(t *testing.T) {
	h := newHarness(t)
	show := testShow(1, "orion", 10*time.Second, h.clock.Now())
	h.svc.createRoom(show, nil)
	h.join(t, "orion", "op", "kim", testOperatorToken)
	h.goOnline(t, show.Id)

	require.NoError(t, h.svc.HandleVoting(context.Background(), "op", VotingParams{
		PassCode: "orion",
		Action:   VotingActionRequest,
		ToPause:  true,
	}))
	h.sender.reset()

	require.NoError(t, h.svc.HandleVideoAction(context.Background(), "op", VideoActionParams{
		PassCode: "orion",
		Action:   VideoActionPause,
	}))

	r := h.svc.rooms[show.Id]
	require.False(t, r.voting.active)

	finishes := h.sender.messagesOfType(messageTypeUpdateVoting)
	require.Len(t, finishes, 1)
	payload := finishes[0].Payload.(map[string]any)
	require.Equal(t, votingEventFinish, payload["event"])
}
