package mysql

import (
	"database/sql"
	"log/slog"
)

// Schema (migrations live outside this repo):
//
//	CREATE TABLE shows (
//	    id              BIGINT AUTO_INCREMENT PRIMARY KEY,
//	    pass_code       VARCHAR(16)  NOT NULL,
//	    title           VARCHAR(250) NOT NULL,
//	    movie_url       VARCHAR(250) NOT NULL,
//	    subtitle_url    VARCHAR(250) NOT NULL DEFAULT '',
//	    start_time      DATETIME(3)  NOT NULL,
//	    duration        DOUBLE       NOT NULL,
//	    smart_sync      TINYINT(1)   NOT NULL DEFAULT 0,
//	    voting_enabled  TINYINT(1)   NOT NULL DEFAULT 0,
//	    status          TINYINT      NOT NULL DEFAULT 0,
//	    finished_at     DATETIME(3)  NULL,
//	    created_at      DATETIME(3)  NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
//	    updated_at      DATETIME(3)  NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
//	    deleted_at      DATETIME(3)  NULL,
//	    KEY idx_shows_status (status),
//	    KEY idx_shows_pass_code (pass_code)
//	);
type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRepo(db *sql.DB, logger *slog.Logger) *repo {
	return &repo{
		db:     db,
		logger: logger,
	}
}
