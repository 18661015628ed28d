package cli

var (
	GetIndexConfig   = getIndexConfig
	LogMigrationPlan = logMigrationPlan
	RenderTeam       = renderTeam
	WatchTeam        = watchTeam
)
