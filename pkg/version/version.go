package version

const (
	// Version is the build version reported in serverInfo and health output.
	Version = "0.1.0"

	// ProtocolVersion is the MCP revision this server speaks by default.
	ProtocolVersion = "2024-11-05"
)
