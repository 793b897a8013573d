package config

// Storage defaults
const (
	DefaultSQLiteDBPath     = "database/ocrdiff_history.db"
	DefaultHistoryListLimit = 20
)

// StorageConfig locates the run history database.
type StorageConfig struct {
	SQLiteDBPath string `json:"sqlite_db_path,omitempty" yaml:"sqlite_db_path,omitempty" validate:"required"`
	// HistoryListLimit is how many runs `history` lists when --limit is not given.
	HistoryListLimit int `json:"history_list_limit,omitempty" yaml:"history_list_limit,omitempty" validate:"omitempty,min=0"`
}

func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		SQLiteDBPath:     DefaultSQLiteDBPath,
		HistoryListLimit: DefaultHistoryListLimit,
	}
}
