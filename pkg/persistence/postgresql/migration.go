package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create runs table
			CREATE TABLE runs (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL,
				kind VARCHAR(50) NOT NULL CHECK (kind IN ('design-review', 'test-addition')),
				stage VARCHAR(50) NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('pending', 'running', 'completed', 'failed', 'aborted')),
				document_path TEXT NOT NULL DEFAULT '',
				task_file_path TEXT NOT NULL DEFAULT '',
				report JSONB,
				error TEXT NOT NULL DEFAULT '',
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				finished_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_runs_workflow_id ON runs(workflow_id);
			CREATE INDEX idx_runs_kind ON runs(kind);
			CREATE INDEX idx_runs_status ON runs(status);
			CREATE INDEX idx_runs_started_at ON runs(started_at);
		`,
	}
}
