package api

import (
	"net/http"
	"strings"
)

func NewRouter(h *Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			h.HandleCreateSession(w, r)
			return
		}
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	mux.HandleFunc("/sessions/", func(w http.ResponseWriter, r *http.Request) {
		// /sessions/{id}[/start|/stop|/transcript|/phase/advance|/hands...|
		//               /floor/{action}|/messages|/transport-token]
		path := strings.TrimSuffix(r.URL.Path, "/")
		rest := strings.TrimPrefix(path, "/sessions/")
		parts := strings.Split(rest, "/")
		if len(parts) == 0 || parts[0] == "" {
			http.NotFound(w, r)
			return
		}
		id := parts[0]
		tail := ""
		if len(parts) > 1 {
			tail = parts[1]
		}

		switch tail {
		case "", "state":
			if r.Method != http.MethodGet {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleSessionState(w, r, id)
			return
		case "start":
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleStartSession(w, r, id)
			return
		case "stop":
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleStopSession(w, r, id)
			return
		case "transcript":
			if r.Method != http.MethodGet {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleTranscript(w, r, id)
			return
		case "phase":
			if len(parts) < 3 {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			switch parts[2] {
			case "advance":
				h.HandleAdvancePhase(w, r, id)
			case "warn":
				h.HandleWarnTime(w, r, id)
			default:
				http.NotFound(w, r)
			}
			return
		case "hands":
			if len(parts) == 2 {
				switch r.Method {
				case http.MethodGet:
					h.HandleListHands(w, r, id)
				case http.MethodPost:
					h.HandleRaiseHand(w, r, id)
				default:
					http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				}
				return
			}
			// /sessions/{id}/hands/{hand_id}/acknowledge | /dismiss
			if len(parts) < 4 {
				http.NotFound(w, r)
				return
			}
			action := parts[3]
			if action != "acknowledge" && action != "dismiss" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleResolveHand(w, r, id, parts[2], action)
			return
		case "floor":
			if len(parts) < 3 {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleFloorAction(w, r, id, parts[2])
			return
		case "messages":
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleSendMessage(w, r, id)
			return
		case "analysis":
			if r.Method != http.MethodGet {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleSessionAnalysis(w, r, id)
			return
		case "transport-token":
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleMintTransportToken(w, r, id)
			return
		default:
			http.NotFound(w, r)
			return
		}
	})

	mux.HandleFunc("/analysis/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		callID := strings.TrimPrefix(strings.TrimSuffix(r.URL.Path, "/"), "/analysis/")
		if callID == "" || strings.Contains(callID, "/") {
			http.NotFound(w, r)
			return
		}
		h.HandleAnalysis(w, r, callID)
	})

	mux.HandleFunc("/notes/last", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.HandleLastNotes(w, r)
	})

	mux.HandleFunc("/notes/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(strings.TrimSuffix(r.URL.Path, "/"), "/notes/")
		if id == "" || strings.Contains(id, "/") {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.HandleGetNotes(w, r, id)
		case http.MethodPut, http.MethodPost:
			h.HandleSaveNotes(w, r, id)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	return mux
}
