package watch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startPauseRound(t *testing.T, h *harness, passCode, starter string) {
	t.Helper()

	require.NoError(t, h.svc.HandleVoting(context.Background(), starter, VotingParams{
		PassCode: passCode,
		Action:   VotingActionRequest,
		ToPause:  true,
	}))
}

func TestVotingRequiresPrivilege(t *testing.T) {
	h := newHarness(t)
	show := testShow(1, "orion", 10*time.Second, h.clock.Now())
	h.svc.createRoom(show, nil)
	h.join(t, "orion", "viewer", "kim", "")
	h.goOnline(t, show.Id)
	h.sender.reset()

	require.NoError(t, h.svc.HandleVoting(context.Background(), "viewer", VotingParams{
		PassCode: "orion",
		Action:   VotingActionRequest,
		ToPause:  true,
	}))

	require.False(t, h.svc.rooms[show.Id].voting.active)
	require.Empty(t, h.sender.messagesOfType(messageTypeUpdateVoting))
}

func TestVotingRejectsInconsistentDirection(t *testing.T) {
	h := newHarness(t)
	show := testShow(1, "orion", 10*time.Second, h.clock.Now())
	h.svc.createRoom(show, nil)
	h.join(t, "orion", "op", "kim", testOperatorToken)
	h.goOnline(t, show.Id)

	// resume round while already playing
	require.NoError(t, h.svc.HandleVoting(context.Background(), "op", VotingParams{
		PassCode: "orion",
		Action:   VotingActionRequest,
		ToPause:  false,
	}))

	require.False(t, h.svc.rooms[show.Id].voting.active)
}

func TestVoteMajorityAppliesPause(t *testing.T) {
	h := newHarness(t)
	show := testShow(1, "orion", 10*time.Second, h.clock.Now())
	h.svc.createRoom(show, nil)
	h.join(t, "orion", "op", "kim", testOperatorToken)
	h.join(t, "orion", "viewer-1", "lee", "")
	h.goOnline(t, show.Id)

	startPauseRound(t, h, "orion", "op")

	for _, vote := range []struct {
		connectionId string
		yes          bool
	}{
		{"op", true},
		{"viewer-1", true},
	} {
		require.NoError(t, h.svc.HandleVoting(context.Background(), vote.connectionId, VotingParams{
			PassCode: "orion",
			Action:   VotingActionVote,
			Yes:      vote.yes,
		}))
	}

	h.clock.Advance(h.svc.cfg.VoteWindow)
	h.sender.reset()
	h.svc.resolveVotes(context.Background())

	r := h.svc.rooms[show.Id]
	require.False(t, r.playing)
	require.False(t, r.voting.active)
	// one broadcast per member
	require.Len(t, h.sender.messagesOfType(messageTypeVideoAction), 2)

	finishes := h.sender.messagesOfType(messageTypeUpdateVoting)
	require.Len(t, finishes, 2)
	payload := finishes[0].Payload.(map[string]any)
	require.Equal(t, votingEventFinish, payload["event"])
}

func TestVoteTieAppliesNothing(t *testing.T) {
	h := newHarness(t)
	show := testShow(1, "orion", 10*time.Second, h.clock.Now())
	h.svc.createRoom(show, nil)
	h.join(t, "orion", "op", "kim", testOperatorToken)
	h.join(t, "orion", "viewer-1", "lee", "")
	h.goOnline(t, show.Id)

	startPauseRound(t, h, "orion", "op")

	require.NoError(t, h.svc.HandleVoting(context.Background(), "op", VotingParams{
		PassCode: "orion", Action: VotingActionVote, Yes: true,
	}))
	require.NoError(t, h.svc.HandleVoting(context.Background(), "viewer-1", VotingParams{
		PassCode: "orion", Action: VotingActionVote, Yes: false,
	}))

	h.clock.Advance(h.svc.cfg.VoteWindow)
	h.sender.reset()
	h.svc.resolveVotes(context.Background())

	r := h.svc.rooms[show.Id]
	require.True(t, r.playing)
	require.False(t, r.voting.active)
	require.Empty(t, h.sender.messagesOfType(messageTypeVideoAction))

	finishes := h.sender.messagesOfType(messageTypeUpdateVoting)
	require.Len(t, finishes, 2)
	payload := finishes[0].Payload.(map[string]any)
	require.Equal(t, votingEventFinish, payload["event"])
	state := payload["voting"].(VotingState)
	require.Equal(t, 1, state.Yes)
	require.Equal(t, 1, state.No)
}

func TestDoubleVoteIgnored(t *testing.T) {
	h := newHarness(t)
	show := testShow(1, "orion", 10*time.Second, h.clock.Now())
	h.svc.createRoom(show, nil)
	h.join(t, "orion", "op", "kim", testOperatorToken)
	h.goOnline(t, show.Id)

	startPauseRound(t, h, "orion", "op")

	for i := 0; i < 3; i++ {
		require.NoError(t, h.svc.HandleVoting(context.Background(), "op", VotingParams{
			PassCode: "orion", Action: VotingActionVote, Yes: true,
		}))
	}

	require.Equal(t, 1, h.svc.rooms[show.Id].voting.yes)
}

func TestDisconnectRetractsVote(t *testing.T) {
	h := newHarness(t)
	show := testShow(1, "orion", 10*time.Second, h.clock.Now())
	h.svc.createRoom(show, nil)
	h.join(t, "orion", "op", "kim", testOperatorToken)
	h.join(t, "orion", "viewer-1", "lee", "")
	leaverConn := h.join(t, "orion", "viewer-2", "ada", "")
	h.goOnline(t, show.Id)

	startPauseRound(t, h, "orion", "op")

	require.NoError(t, h.svc.HandleVoting(context.Background(), "op", VotingParams{
		PassCode: "orion", Action: VotingActionVote, Yes: true,
	}))
	require.NoError(t, h.svc.HandleVoting(context.Background(), "viewer-2", VotingParams{
		PassCode: "orion", Action: VotingActionVote, Yes: true,
	}))

	h.svc.DisconnectConnection(leaverConn)

	h.clock.Advance(h.svc.cfg.VoteWindow)
	h.sender.reset()
	h.svc.resolveVotes(context.Background())

	finishes := h.sender.messagesOfType(messageTypeUpdateVoting)
	require.Len(t, finishes, 2)
	state := finishes[0].Payload.(map[string]any)["voting"].(VotingState)
	require.Equal(t, 1, state.Yes)
	require.Equal(t, 0, state.No)
}

func TestLiveRoundRebroadcastsTally(t *testing.T) {
	h := newHarness(t)
	show := testShow(1, "orion", 10*time.Second, h.clock.Now())
	h.svc.createRoom(show, nil)
	h.join(t, "orion", "op", "kim", testOperatorToken)
	h.goOnline(t, show.Id)

	startPauseRound(t, h, "orion", "op")
	h.sender.reset()

	h.clock.Advance(time.Second)
	h.svc.resolveVotes(context.Background())

	updates := h.sender.messagesOfType(messageTypeUpdateVoting)
	require.Len(t, updates, 1)
	payload := updates[0].Payload.(map[string]any)
	require.Equal(t, votingEventUpdate, payload["event"])
	require.True(t, h.svc.rooms[show.Id].voting.active)
}
