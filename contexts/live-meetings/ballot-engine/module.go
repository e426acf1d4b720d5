package ballotengine

import (
	"log/slog"

	httpadapter "ballotroom/contexts/live-meetings/ballot-engine/adapters/http"
	"ballotroom/contexts/live-meetings/ballot-engine/adapters/memory"
	"ballotroom/contexts/live-meetings/ballot-engine/application/commands"
	"ballotroom/contexts/live-meetings/ballot-engine/application/queries"
	"ballotroom/contexts/live-meetings/ballot-engine/application/workers"
	"ballotroom/contexts/live-meetings/ballot-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Sweeper workers.PurgeSweeper
	Store   *memory.Store
}

type Dependencies struct {
	Meetings     ports.MeetingRepository
	Participants ports.ParticipantRepository
	Polls        ports.PollRepository
	Votes        ports.VoteRepository
	Publisher    ports.EventPublisher
	Renderer     ports.ReportRenderer
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Codes        ports.CodeGenerator
	CodeAttempts int
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	meetingUseCase := commands.MeetingUseCase{
		Meetings:     deps.Meetings,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		Codes:        deps.Codes,
		CodeAttempts: deps.CodeAttempts,
		Logger:       deps.Logger,
	}
	participantUseCase := commands.ParticipantUseCase{
		Meetings:     deps.Meetings,
		Participants: deps.Participants,
		Publisher:    deps.Publisher,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		Logger:       deps.Logger,
	}
	pollUseCase := commands.PollUseCase{
		Meetings:  deps.Meetings,
		Polls:     deps.Polls,
		Publisher: deps.Publisher,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	voteUseCase := commands.VoteUseCase{
		Polls:     deps.Polls,
		Votes:     deps.Votes,
		Publisher: deps.Publisher,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	reportUseCase := commands.ReportUseCase{
		Meetings:     deps.Meetings,
		Participants: deps.Participants,
		Polls:        deps.Polls,
		Votes:        deps.Votes,
		Renderer:     deps.Renderer,
		Clock:        deps.Clock,
		Logger:       deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			Meetings:     meetingUseCase,
			Participants: participantUseCase,
			Polls:        pollUseCase,
			Votes:        voteUseCase,
			Reports:      reportUseCase,
			MeetingViews: queries.MeetingQueries{
				Meetings:     deps.Meetings,
				Participants: deps.Participants,
				Polls:        deps.Polls,
			},
			ParticipantViews: queries.ParticipantQueries{
				Participants: deps.Participants,
			},
			Results: queries.ResultsQueries{
				Polls: deps.Polls,
				Votes: deps.Votes,
			},
			Logger: deps.Logger,
		},
		Sweeper: workers.PurgeSweeper{
			Meetings:     deps.Meetings,
			Participants: deps.Participants,
			Polls:        deps.Polls,
			Votes:        deps.Votes,
			Logger:       deps.Logger,
		},
	}
}

// NewInMemoryModule wires every port to the in-memory store; used by tests
// and local runtime without postgres.
func NewInMemoryModule(publisher ports.EventPublisher, renderer ports.ReportRenderer, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Meetings:     store,
		Participants: store,
		Polls:        store,
		Votes:        store,
		Publisher:    publisher,
		Renderer:     renderer,
		Clock:        store,
		IDGen:        store,
		Codes:        store,
		Logger:       logger,
	})
	module.Store = store
	return module
}
