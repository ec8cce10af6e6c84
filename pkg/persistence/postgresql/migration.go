package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				created_at BIGINT NOT NULL,
				updated_at BIGINT NOT NULL,
				data JSONB NOT NULL
			);

			CREATE INDEX idx_workflows_created_at ON workflows(created_at);

			CREATE TABLE executions (
				id VARCHAR(255) PRIMARY KEY,
				workflow_id VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL,
				started_at BIGINT NOT NULL,
				data JSONB NOT NULL
			);

			CREATE INDEX idx_executions_workflow_started ON executions(workflow_id, started_at DESC);
			CREATE INDEX idx_executions_started ON executions(started_at DESC);
			CREATE INDEX idx_executions_status ON executions(status);
		`,
		2: `
			CREATE TABLE snapshots (
				execution_id VARCHAR(255) PRIMARY KEY,
				workflow_id VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL,
				started_at BIGINT NOT NULL,
				stored_size BIGINT NOT NULL,
				header JSONB NOT NULL,
				data BYTEA NOT NULL
			);

			CREATE INDEX idx_snapshots_workflow_started ON snapshots(workflow_id, started_at DESC);
			CREATE INDEX idx_snapshots_started ON snapshots(started_at DESC);
		`,
	}
}
