package models

import "time"

const (
	VCTypeVoice = "voice"
	VCTypeVideo = "video"
)

const (
	// DefaultDatabaseName имя базы документов по умолчанию
	DefaultDatabaseName = "HellMusicDB"

	// DefaultStoreTimeout дедлайн каждой операции с хранилищем
	DefaultStoreTimeout = 10 * time.Second

	// AutoendTag значение сторожевого поля документа autoend
	AutoendTag = "autoend"

	// FailoverRecheckInterval пауза перед повторной попыткой основного runtime-хранилища
	FailoverRecheckInterval = time.Minute

	// DefaultAPIPort порт административного HTTP API
	DefaultAPIPort = 8080

	// DefaultMetricsPort порт Prometheus, если он не задан
	DefaultMetricsPort = 9090
)

const (
	RuntimeBackendMemory   = "memory"
	RuntimeBackendRedis    = "redis"
	RuntimeBackendFailover = "failover"
)

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)
