package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE flows (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				state INTEGER NOT NULL DEFAULT 1,
				result TEXT,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX idx_flows_created_at ON flows(created_at);
		`,
		2: `
			CREATE TABLE nodes (
				flow_id VARCHAR(255) NOT NULL REFERENCES flows(id) ON DELETE CASCADE,
				id VARCHAR(255) NOT NULL,
				position INTEGER NOT NULL,
				type INTEGER NOT NULL CHECK (type BETWEEN 1 AND 3),
				config TEXT NOT NULL DEFAULT '',
				PRIMARY KEY (flow_id, id)
			);

			CREATE INDEX idx_nodes_flow_position ON nodes(flow_id, position);
		`,
	}
}
