package http

import (
	"strings"

	"github.com/pion/webrtc/v4"

	"github.com/verbyflow/signaling/internal/config"
)

// advertisedICEServers converts configured entries to the list clients
// use for their PeerConnections. TURN entries without complete
// credentials are unusable and filtered out.
func advertisedICEServers(cfg *config.Config) []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(cfg.ICEServers))
	for _, s := range cfg.ICEServers {
		server := webrtc.ICEServer{URLs: s.URLs, Username: s.Username}
		if s.Credential != "" {
			server.Credential = s.Credential
		}
		if iceServerHasTURNURL(server) {
			if strings.TrimSpace(s.Username) == "" || strings.TrimSpace(s.Credential) == "" {
				continue
			}
		}
		out = append(out, server)
	}
	return out
}

func iceServerHasTURNURL(server webrtc.ICEServer) bool {
	for _, raw := range server.URLs {
		url := strings.ToLower(strings.TrimSpace(raw))
		if strings.HasPrefix(url, "turn:") || strings.HasPrefix(url, "turns:") {
			return true
		}
	}
	return false
}
