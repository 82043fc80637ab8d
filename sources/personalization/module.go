package personalization

import (
	"fitcoach/sources/repository"

	"go.uber.org/fx"
)

var Module = fx.Module("personalization",
	fx.Provide(
		NewAggregator,
		NewUpdaterConfig,
		func(profiles *repository.ProfilesRepository) UserLister { return profiles },
		func(events *repository.EventsRepository) HistoryReader { return events },
		func(personalizations *repository.PersonalizationsRepository) Store { return personalizations },
		NewUpdater,
	),
)

// SchedulerModule runs the updater periodically for as long as the app lives.
var SchedulerModule = fx.Module("personalization_scheduler",
	fx.Provide(NewScheduler),
	fx.Invoke(func(*Scheduler) {}),
)
