package database

// schemaStatements bootstraps the schema idempotently; each statement is safe
// to re-run against an already-migrated database.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              uuid PRIMARY KEY,
		name            text NOT NULL,
		email           text NOT NULL UNIQUE,
		is_active       boolean NOT NULL DEFAULT true,
		role            text NOT NULL DEFAULT 'staff',
		password_hash   bytea NOT NULL,
		two_fa_verified boolean NOT NULL DEFAULT false,
		created_at      timestamptz NOT NULL,
		updated_at      timestamptz NOT NULL,
		last_login      timestamptz NOT NULL DEFAULT 'epoch'
	)`,

	`CREATE TABLE IF NOT EXISTS students (
		id           uuid PRIMARY KEY,
		name         text NOT NULL,
		cohort       text NOT NULL DEFAULT '',
		sem          text NOT NULL DEFAULT '',
		cu_id        integer NOT NULL DEFAULT 0,
		ic_no        text NOT NULL DEFAULT '',
		mobile_no    text NOT NULL DEFAULT '',
		email        text NOT NULL DEFAULT '',
		bm           text NOT NULL DEFAULT '',
		english      text NOT NULL DEFAULT '',
		entry_q      text NOT NULL DEFAULT '',
		matric_no    text NOT NULL UNIQUE,
		status       text NOT NULL DEFAULT 'Active',
		graduated_on text NOT NULL DEFAULT '-'
	)`,
	`CREATE INDEX IF NOT EXISTS students_cu_id_idx ON students (cu_id)`,

	`CREATE TABLE IF NOT EXISTS courses (
		id             uuid PRIMARY KEY,
		course_code    text NOT NULL,
		program_code   text NOT NULL,
		module         text NOT NULL DEFAULT '',
		classification text NOT NULL DEFAULT '',
		pre_co_req     text NOT NULL DEFAULT '',
		credit_hour    integer NOT NULL DEFAULT 0,
		lect_hr_wk     text NOT NULL DEFAULT '',
		tut_hr_wk      text NOT NULL DEFAULT '',
		lab_hr_wk      text NOT NULL DEFAULT '',
		bl_hr_wk       text NOT NULL DEFAULT '',
		cw_credits     integer NOT NULL DEFAULT 0,
		ex_credits     integer NOT NULL DEFAULT 0,
		course_level   integer NOT NULL DEFAULT 0,
		lecturer       text NOT NULL DEFAULT '',
		course_year    text NOT NULL DEFAULT '',
		status         text NOT NULL DEFAULT 'Active',
		priority       integer NOT NULL DEFAULT 0,
		version        timestamptz NOT NULL,
		UNIQUE (course_code, program_code)
	)`,

	`CREATE TABLE IF NOT EXISTS scores (
		id            uuid PRIMARY KEY,
		matric_no     text NOT NULL REFERENCES students (matric_no) ON DELETE CASCADE,
		course_code   text NOT NULL,
		attempt_1     text NOT NULL DEFAULT '-',
		attempt_2     text NOT NULL DEFAULT '-',
		attempt_3     text NOT NULL DEFAULT '-',
		a1_updated_at timestamptz,
		a2_updated_at timestamptz,
		a3_updated_at timestamptz,
		UNIQUE (matric_no, course_code)
	)`,
	`CREATE INDEX IF NOT EXISTS scores_course_code_idx ON scores (course_code)`,
}
