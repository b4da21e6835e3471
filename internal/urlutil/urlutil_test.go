package urlutil

import "testing"

func TestJoinPath(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		paths   []string
		want    string
		wantErr bool
	}{
		{
			name:  "simple join",
			base:  "http://localhost:4280",
			paths: []string{".auth", "login"},
			want:  "http://localhost:4280/.auth/login",
		},
		{
			name:  "base with path",
			base:  "http://localhost:4280/base",
			paths: []string{"api"},
			want:  "http://localhost:4280/base/api",
		},
		{
			name:  "trailing slash preserved",
			base:  "http://localhost:4280",
			paths: []string{"api/"},
			want:  "http://localhost:4280/api/",
		},
		{
			name:  "empty paths",
			base:  "http://localhost:4280",
			paths: []string{},
			want:  "http://localhost:4280",
		},
		{
			name:    "invalid base URL",
			base:    "://invalid",
			paths:   []string{"api"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JoinPath(tt.base, tt.paths...)
			if (err != nil) != tt.wantErr {
				t.Errorf("JoinPath() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("JoinPath() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveLoopback(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{host: "localhost:4280", want: "127.0.0.1:4280"},
		{host: "LocalHost:4280", want: "127.0.0.1:4280"},
		{host: "localhost", want: "127.0.0.1"},
		{host: "example.com:4280", want: "example.com:4280"},
		{host: "127.0.0.1:4280", want: "127.0.0.1:4280"},
		{host: "localhost.example.com:80", want: "localhost.example.com:80"},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := ResolveLoopback(tt.host); got != tt.want {
				t.Errorf("ResolveLoopback(%q) = %q, want %q", tt.host, got, tt.want)
			}
		})
	}
}
