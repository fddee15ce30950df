package pattern

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want string
	}{
		{
			name: "mjpg client collapses to placeholder pattern",
			msg:  "MJPG-streamer serving client: 10.0.0.5",
			want: "MJPG-streamer serving client: <token>",
		},
		{
			name: "mjpg without client token falls back to bare pattern",
			msg:  "MJPG-streamer serving client",
			want: "MJPG-streamer serving client",
		},
		{
			name: "printcore extrusion keeps core index",
			msg:  "PrintCore 0 extruded 12.3 mm in 1.1 s, remaining length = 800 mm",
			want: "PrintCore 0 extrusion update",
		},
		{
			name: "printcore extrusion second core",
			msg:  "PrintCore 1 extruded 4.0 mm in 0.5 s, remaining length = 213 mm",
			want: "PrintCore 1 extrusion update",
		},
		{
			name: "nfc queue keeps hotend index",
			msg:  "Queueing tag for hotend 1",
			want: "NFC tag queue update for hotend 1",
		},
		{
			name: "nfc write keeps hotend index",
			msg:  "Writing tag to hotend index # 0",
			want: "NFC tag write for hotend 0",
		},
		{
			name: "pid masked",
			msg:  "PrinterService[1234]: started",
			want: "PrinterService[PID]: started",
		},
		{
			name: "time masked",
			msg:  "sync completed at 14:22:01",
			want: "sync completed at TIME",
		},
		{
			name: "ip masked",
			msg:  "connection from 192.168.1.44 refused",
			want: "connection from IP refused",
		},
		{
			name: "uuid masked",
			msg:  "job 7c9e6679-7425-40de-944b-e07fc1f90ae7 aborted",
			want: "job UUID aborted",
		},
		{
			name: "combined masking",
			msg:  "proxy[42] 10.0.0.1 at 09:00:00",
			want: "proxy[PID] IP at TIME",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.msg); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.msg, got, tt.want)
			}
		})
	}
}

func TestNormalizeSameMJPGPatternForDifferentClients(t *testing.T) {
	a := Normalize("MJPG-streamer serving client: 10.0.0.2")
	b := Normalize("MJPG-streamer serving client: 10.0.0.5")
	if a != b {
		t.Errorf("expected identical patterns for different clients, got %q and %q", a, b)
	}
}

func TestDetails(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want string
	}{
		{
			name: "mjpg client token",
			msg:  "MJPG-streamer serving client: 10.0.0.5",
			want: "10.0.0.5",
		},
		{
			name: "printcore extrusion summary",
			msg:  "PrintCore 0 extruded 12.3 mm in 1.1 s, remaining length = 800 mm",
			want: "Core 0: 12.3mm in 1.1s (800mm remaining)",
		},
		{
			name: "printcore without full grammar has no details",
			msg:  "PrintCore 0 extruded something odd",
			want: "",
		},
		{
			name: "plain message has no details",
			msg:  "Build Complete",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Details(tt.msg); got != tt.want {
				t.Errorf("Details(%q) = %q, want %q", tt.msg, got, tt.want)
			}
		})
	}
}

func TestClientToken(t *testing.T) {
	if got := ClientToken("MJPG-streamer serving client: 10.0.0.2:51234"); got != "10.0.0.2:51234" {
		t.Errorf("ClientToken = %q, want %q", got, "10.0.0.2:51234")
	}
	if got := ClientToken("no client here"); got != "" {
		t.Errorf("ClientToken on non-matching message = %q, want empty", got)
	}
}
