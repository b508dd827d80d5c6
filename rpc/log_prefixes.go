package rpc

// Log line prefixes external tooling (a dialdbg-style diagnostic parser, out
// of scope for this module) matches against. Do not change these strings
// without a corresponding update to whatever parses them.
const (
	logMDNSAttempt       = "Attempting to connect via mDNS"
	logMDNSFound         = "Found address via mDNS"
	logMDNSConnected     = "Connected via mDNS"
	logAcquiringAuth     = "Acquiring auth token"
	logAcquiredAuth      = "Acquired auth token"
	logDialing           = "Dialing"
	logConnectedGRPC     = "Connected via gRPC"
	logConnectedWebRTC   = "Connected via WebRTC"
	logCandidateSelected = "Selected candidate pair"
)
