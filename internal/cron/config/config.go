package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Filter & export cycle, daily at midnight
	CronScheduleFilterExport string `env:"CRON_SCHEDULE_FILTER_EXPORT" envDefault:"0 0 0 * * *"`
	// Processing log purge, daily at 00:30
	CronScheduleLogPurge string `env:"CRON_SCHEDULE_LOG_PURGE" envDefault:"0 30 0 * * *"`
}
