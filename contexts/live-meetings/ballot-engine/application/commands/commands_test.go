package commands

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"ballotroom/contexts/live-meetings/ballot-engine/adapters/memory"
	"ballotroom/contexts/live-meetings/ballot-engine/application/queries"
	"ballotroom/contexts/live-meetings/ballot-engine/domain/entities"
	domainerrors "ballotroom/contexts/live-meetings/ballot-engine/domain/errors"
	"ballotroom/contexts/live-meetings/ballot-engine/ports"
	"ballotroom/internal/shared/events"
)

type capturePublisher struct {
	mu        sync.Mutex
	envelopes []events.Envelope
}

func (p *capturePublisher) Publish(_ context.Context, _ string, envelope events.Envelope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.envelopes = append(p.envelopes, envelope)
}

func (p *capturePublisher) lastType() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.envelopes) == 0 {
		return ""
	}
	return p.envelopes[len(p.envelopes)-1].EventType
}

type sequencedCodes struct {
	mu    sync.Mutex
	queue []string
}

func (g *sequencedCodes) NewCode(_ context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.queue) == 0 {
		return "", errors.New("code queue exhausted")
	}
	code := g.queue[0]
	g.queue = g.queue[1:]
	return code, nil
}

type stubRenderer struct {
	fail bool
}

func (r stubRenderer) Render(_ context.Context, _ ports.ReportSnapshot) ([]byte, error) {
	if r.fail {
		return nil, errors.New("render exploded")
	}
	return []byte("%PDF-stub"), nil
}

func newMeetingUseCase(store *memory.Store) MeetingUseCase {
	return MeetingUseCase{Meetings: store, Clock: store, IDGen: store, Codes: store}
}

func seedMeeting(t *testing.T, store *memory.Store) entities.Meeting {
	t.Helper()
	meeting, err := newMeetingUseCase(store).CreateMeeting(context.Background(), CreateMeetingCommand{
		Title:         "Quarterly Sync",
		OrganizerName: "Alex",
	})
	if err != nil {
		t.Fatalf("seed meeting failed: %v", err)
	}
	return meeting
}

func seedPoll(t *testing.T, store *memory.Store, publisher ports.EventPublisher, meetingID string, timer *int) entities.Poll {
	t.Helper()
	uc := PollUseCase{Meetings: store, Polls: store, Publisher: publisher, Clock: store, IDGen: store}
	poll, err := uc.CreatePoll(context.Background(), CreatePollCommand{
		MeetingID:     meetingID,
		Question:      "Ship on Friday?",
		OptionLabels:  []string{"Yes", "No"},
		TimerDuration: timer,
	})
	if err != nil {
		t.Fatalf("seed poll failed: %v", err)
	}
	return poll
}

func TestCreateMeetingRejectsBlankInput(t *testing.T) {
	store := memory.NewStore()
	_, err := newMeetingUseCase(store).CreateMeeting(context.Background(), CreateMeetingCommand{
		Title:         "   ",
		OrganizerName: "Alex",
	})
	if !errors.Is(err, domainerrors.ErrInvalidMeetingInput) {
		t.Fatalf("expected invalid meeting input, got %v", err)
	}
}

func TestCreateMeetingIssuesUppercaseJoinCode(t *testing.T) {
	store := memory.NewStore()
	meeting := seedMeeting(t, store)

	if len(meeting.Code) != 8 {
		t.Fatalf("expected 8-character code, got %q", meeting.Code)
	}
	if meeting.Code != strings.ToUpper(meeting.Code) {
		t.Fatalf("expected uppercase code, got %q", meeting.Code)
	}
	if meeting.Status != entities.MeetingStatusActive {
		t.Fatalf("expected active meeting, got %s", meeting.Status)
	}
}

func TestCreateMeetingRegeneratesCollidingCode(t *testing.T) {
	store := memory.NewStore()
	existing := seedMeeting(t, store)

	uc := newMeetingUseCase(store)
	uc.Codes = &sequencedCodes{queue: []string{existing.Code, "BBBB2222"}}

	meeting, err := uc.CreateMeeting(context.Background(), CreateMeetingCommand{
		Title:         "Retro",
		OrganizerName: "Sam",
	})
	if err != nil {
		t.Fatalf("create with collision failed: %v", err)
	}
	if meeting.Code != "BBBB2222" {
		t.Fatalf("expected regenerated code, got %q", meeting.Code)
	}
}

func TestCreateMeetingExhaustsCodeAttempts(t *testing.T) {
	store := memory.NewStore()
	existing := seedMeeting(t, store)

	uc := newMeetingUseCase(store)
	uc.Codes = &sequencedCodes{queue: []string{existing.Code, existing.Code}}
	uc.CodeAttempts = 2

	_, err := uc.CreateMeeting(context.Background(), CreateMeetingCommand{
		Title:         "Retro",
		OrganizerName: "Sam",
	})
	if !errors.Is(err, domainerrors.ErrCodeCollision) {
		t.Fatalf("expected code collision, got %v", err)
	}
}

func TestJoinResolvesActiveMeetingsOnly(t *testing.T) {
	store := memory.NewStore()
	meeting := seedMeeting(t, store)
	if err := store.MarkMeetingCompleted(context.Background(), meeting.MeetingID, store.Now()); err != nil {
		t.Fatalf("mark completed failed: %v", err)
	}

	uc := ParticipantUseCase{Meetings: store, Participants: store, Publisher: &capturePublisher{}, Clock: store, IDGen: store}
	_, err := uc.Join(context.Background(), JoinMeetingCommand{Name: "Dana", Code: meeting.Code})
	if !errors.Is(err, domainerrors.ErrMeetingNotFound) {
		t.Fatalf("expected meeting not found for completed meeting, got %v", err)
	}
}

func TestJoinNameStaysTakenAfterRejection(t *testing.T) {
	store := memory.NewStore()
	meeting := seedMeeting(t, store)
	publisher := &capturePublisher{}
	uc := ParticipantUseCase{Meetings: store, Participants: store, Publisher: publisher, Clock: store, IDGen: store}

	participant, err := uc.Join(context.Background(), JoinMeetingCommand{Name: "Dana", Code: meeting.Code})
	if err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	if participant.Status != entities.ParticipantStatusPending {
		t.Fatalf("expected pending participant, got %s", participant.Status)
	}
	if publisher.lastType() != events.TypeParticipantJoined {
		t.Fatalf("expected participant_joined event, got %q", publisher.lastType())
	}

	if err := uc.Decide(context.Background(), DecideParticipantCommand{ParticipantID: participant.ParticipantID, Approved: false}); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	// A rejected name still occupies its slot.
	_, err = uc.Join(context.Background(), JoinMeetingCommand{Name: "Dana", Code: meeting.Code})
	if !errors.Is(err, domainerrors.ErrNameTaken) {
		t.Fatalf("expected name taken, got %v", err)
	}
}

func TestDecideParticipantRecordsApproval(t *testing.T) {
	store := memory.NewStore()
	meeting := seedMeeting(t, store)
	publisher := &capturePublisher{}
	uc := ParticipantUseCase{Meetings: store, Participants: store, Publisher: publisher, Clock: store, IDGen: store}

	participant, err := uc.Join(context.Background(), JoinMeetingCommand{Name: "Dana", Code: meeting.Code})
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if err := uc.Decide(context.Background(), DecideParticipantCommand{ParticipantID: participant.ParticipantID, Approved: true}); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	refreshed, err := store.GetParticipant(context.Background(), participant.ParticipantID)
	if err != nil {
		t.Fatalf("get participant failed: %v", err)
	}
	if refreshed.Status != entities.ParticipantStatusApproved {
		t.Fatalf("expected approved, got %s", refreshed.Status)
	}
	if publisher.lastType() != events.TypeParticipantApproved {
		t.Fatalf("expected participant_approved event, got %q", publisher.lastType())
	}
}

func TestStartPollStampsTimerOnlyWhenConfigured(t *testing.T) {
	store := memory.NewStore()
	meeting := seedMeeting(t, store)
	publisher := &capturePublisher{}
	uc := PollUseCase{Meetings: store, Polls: store, Publisher: publisher, Clock: store, IDGen: store}

	timer := 60
	timed := seedPoll(t, store, publisher, meeting.MeetingID, &timer)
	untimed := seedPoll(t, store, publisher, meeting.MeetingID, nil)

	if err := uc.StartPoll(context.Background(), timed.PollID); err != nil {
		t.Fatalf("start timed poll failed: %v", err)
	}
	if err := uc.StartPoll(context.Background(), untimed.PollID); err != nil {
		t.Fatalf("start untimed poll failed: %v", err)
	}

	startedTimed, _ := store.GetPoll(context.Background(), timed.PollID)
	if startedTimed.Status != entities.PollStatusActive {
		t.Fatalf("expected active poll, got %s", startedTimed.Status)
	}
	if startedTimed.TimerStartedAt == nil {
		t.Fatal("expected timer_started_at on timed poll")
	}

	startedUntimed, _ := store.GetPoll(context.Background(), untimed.PollID)
	if startedUntimed.TimerStartedAt != nil {
		t.Fatal("expected no timer_started_at on untimed poll")
	}
	if publisher.lastType() != events.TypePollStarted {
		t.Fatalf("expected poll_started event, got %q", publisher.lastType())
	}
}

func TestClosePollFromDraft(t *testing.T) {
	store := memory.NewStore()
	meeting := seedMeeting(t, store)
	publisher := &capturePublisher{}
	uc := PollUseCase{Meetings: store, Polls: store, Publisher: publisher, Clock: store, IDGen: store}

	draft := seedPoll(t, store, publisher, meeting.MeetingID, nil)
	if err := uc.ClosePoll(context.Background(), draft.PollID); err != nil {
		t.Fatalf("close from draft failed: %v", err)
	}

	closed, _ := store.GetPoll(context.Background(), draft.PollID)
	if closed.Status != entities.PollStatusClosed {
		t.Fatalf("expected closed poll, got %s", closed.Status)
	}
}

func TestSubmitVoteRequiresActivePoll(t *testing.T) {
	store := memory.NewStore()
	meeting := seedMeeting(t, store)
	publisher := &capturePublisher{}
	poll := seedPoll(t, store, publisher, meeting.MeetingID, nil)

	uc := VoteUseCase{Polls: store, Votes: store, Publisher: publisher, Clock: store, IDGen: store}
	err := uc.SubmitVote(context.Background(), SubmitVoteCommand{PollID: poll.PollID, OptionID: poll.Options[0].OptionID})
	if !errors.Is(err, domainerrors.ErrPollNotActive) {
		t.Fatalf("expected poll not active on draft, got %v", err)
	}
}

func TestSubmitVoteRejectsUnknownOption(t *testing.T) {
	store := memory.NewStore()
	meeting := seedMeeting(t, store)
	publisher := &capturePublisher{}
	poll := seedPoll(t, store, publisher, meeting.MeetingID, nil)

	pollUC := PollUseCase{Meetings: store, Polls: store, Publisher: publisher, Clock: store, IDGen: store}
	if err := pollUC.StartPoll(context.Background(), poll.PollID); err != nil {
		t.Fatalf("start poll failed: %v", err)
	}

	uc := VoteUseCase{Polls: store, Votes: store, Publisher: publisher, Clock: store, IDGen: store}
	err := uc.SubmitVote(context.Background(), SubmitVoteCommand{PollID: poll.PollID, OptionID: "option-from-another-poll"})
	if !errors.Is(err, domainerrors.ErrUnknownOption) {
		t.Fatalf("expected unknown option, got %v", err)
	}
	if store.VoteCount(poll.PollID) != 0 {
		t.Fatal("rejected vote must not land in the log")
	}
}

func TestSubmitVoteRecomputesCountsFromLog(t *testing.T) {
	store := memory.NewStore()
	meeting := seedMeeting(t, store)
	publisher := &capturePublisher{}
	poll := seedPoll(t, store, publisher, meeting.MeetingID, nil)

	pollUC := PollUseCase{Meetings: store, Polls: store, Publisher: publisher, Clock: store, IDGen: store}
	if err := pollUC.StartPoll(context.Background(), poll.PollID); err != nil {
		t.Fatalf("start poll failed: %v", err)
	}

	uc := VoteUseCase{Polls: store, Votes: store, Publisher: publisher, Clock: store, IDGen: store}
	yes, no := poll.Options[0].OptionID, poll.Options[1].OptionID
	for _, optionID := range []string{yes, yes, no} {
		if err := uc.SubmitVote(context.Background(), SubmitVoteCommand{PollID: poll.PollID, OptionID: optionID}); err != nil {
			t.Fatalf("submit vote failed: %v", err)
		}
	}

	refreshed, _ := store.GetPoll(context.Background(), poll.PollID)
	if refreshed.Options[0].Votes != 2 || refreshed.Options[1].Votes != 1 {
		t.Fatalf("expected counts 2/1, got %d/%d", refreshed.Options[0].Votes, refreshed.Options[1].Votes)
	}
	if store.VoteCount(poll.PollID) != 3 {
		t.Fatalf("expected 3 vote rows, got %d", store.VoteCount(poll.PollID))
	}
	if publisher.lastType() != events.TypeVoteSubmitted {
		t.Fatalf("expected vote_submitted event, got %q", publisher.lastType())
	}
}

func TestSubmitVoteConcurrentSubmissionsConverge(t *testing.T) {
	store := memory.NewStore()
	meeting := seedMeeting(t, store)
	publisher := &capturePublisher{}
	poll := seedPoll(t, store, publisher, meeting.MeetingID, nil)

	pollUC := PollUseCase{Meetings: store, Polls: store, Publisher: publisher, Clock: store, IDGen: store}
	if err := pollUC.StartPoll(context.Background(), poll.PollID); err != nil {
		t.Fatalf("start poll failed: %v", err)
	}

	// The log is the authority: however the recomputes interleave, reported
	// counts must equal the number of vote rows per option once writes stop.
	uc := VoteUseCase{Polls: store, Votes: store, Publisher: publisher, Clock: store, IDGen: store}
	const submitters = 100
	var wg sync.WaitGroup
	failures := make(chan error, submitters)
	for i := 0; i < submitters; i++ {
		optionID := poll.Options[i%len(poll.Options)].OptionID
		wg.Add(1)
		go func(optionID string) {
			defer wg.Done()
			if err := uc.SubmitVote(context.Background(), SubmitVoteCommand{PollID: poll.PollID, OptionID: optionID}); err != nil {
				failures <- err
			}
		}(optionID)
	}
	wg.Wait()
	close(failures)
	for err := range failures {
		t.Fatalf("concurrent submit failed: %v", err)
	}

	results, err := queries.ResultsQueries{Polls: store, Votes: store}.Results(context.Background(), poll.PollID)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	if results.TotalVotes != submitters {
		t.Fatalf("expected total %d, got %d", submitters, results.TotalVotes)
	}
	sum := 0
	for _, result := range results.Results {
		sum += result.Votes
	}
	if sum != submitters {
		t.Fatalf("expected option counts to sum to %d, got %d", submitters, sum)
	}
	// Submitters alternated options, so the split is exact.
	if results.Results[0].Votes != submitters/2 || results.Results[1].Votes != submitters/2 {
		t.Fatalf("expected %d/%d split, got %d/%d",
			submitters/2, submitters/2, results.Results[0].Votes, results.Results[1].Votes)
	}
	if store.VoteCount(poll.PollID) != submitters {
		t.Fatalf("expected %d vote rows, got %d", submitters, store.VoteCount(poll.PollID))
	}
}

func TestGenerateReportPurgesEverything(t *testing.T) {
	store := memory.NewStore()
	meeting := seedMeeting(t, store)
	publisher := &capturePublisher{}

	participantUC := ParticipantUseCase{Meetings: store, Participants: store, Publisher: publisher, Clock: store, IDGen: store}
	participant, err := participantUC.Join(context.Background(), JoinMeetingCommand{Name: "Dana", Code: meeting.Code})
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if err := participantUC.Decide(context.Background(), DecideParticipantCommand{ParticipantID: participant.ParticipantID, Approved: true}); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	poll := seedPoll(t, store, publisher, meeting.MeetingID, nil)
	pollUC := PollUseCase{Meetings: store, Polls: store, Publisher: publisher, Clock: store, IDGen: store}
	if err := pollUC.StartPoll(context.Background(), poll.PollID); err != nil {
		t.Fatalf("start poll failed: %v", err)
	}
	voteUC := VoteUseCase{Polls: store, Votes: store, Publisher: publisher, Clock: store, IDGen: store}
	if err := voteUC.SubmitVote(context.Background(), SubmitVoteCommand{PollID: poll.PollID, OptionID: poll.Options[0].OptionID}); err != nil {
		t.Fatalf("submit vote failed: %v", err)
	}

	reportUC := ReportUseCase{Meetings: store, Participants: store, Polls: store, Votes: store, Renderer: stubRenderer{}, Clock: store}
	artifact, err := reportUC.GenerateReport(context.Background(), meeting.MeetingID)
	if err != nil {
		t.Fatalf("generate report failed: %v", err)
	}
	if len(artifact) == 0 {
		t.Fatal("expected report bytes")
	}

	if _, err := store.GetMeeting(context.Background(), meeting.MeetingID); !errors.Is(err, domainerrors.ErrMeetingNotFound) {
		t.Fatalf("expected purged meeting, got %v", err)
	}
	if _, found, _ := store.GetActiveMeetingByCode(context.Background(), meeting.Code); found {
		t.Fatal("expected join code to be freed")
	}
	participants, _ := store.ListParticipantsByMeeting(context.Background(), meeting.MeetingID)
	if len(participants) != 0 {
		t.Fatalf("expected purged participants, got %d", len(participants))
	}
	if store.VoteCount(poll.PollID) != 0 {
		t.Fatal("expected purged votes")
	}
}

func TestGenerateReportRenderFailureLeavesMeetingIntact(t *testing.T) {
	store := memory.NewStore()
	meeting := seedMeeting(t, store)

	reportUC := ReportUseCase{Meetings: store, Participants: store, Polls: store, Votes: store, Renderer: stubRenderer{fail: true}, Clock: store}
	_, err := reportUC.GenerateReport(context.Background(), meeting.MeetingID)
	if !errors.Is(err, domainerrors.ErrReportRenderFailed) {
		t.Fatalf("expected report render failure, got %v", err)
	}

	// Render runs before the completed mark and the cascade; nothing is lost.
	intact, err := store.GetMeeting(context.Background(), meeting.MeetingID)
	if err != nil {
		t.Fatalf("get meeting failed: %v", err)
	}
	if intact.Status != entities.MeetingStatusActive {
		t.Fatalf("expected meeting still active, got %s", intact.Status)
	}
}
