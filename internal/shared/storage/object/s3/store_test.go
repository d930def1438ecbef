package s3

import "testing"

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "hash/photo.jpg", want: "hash/photo.jpg"},
		{name: "simple prefix", prefix: "regimen-photos", key: "hash/photo.jpg", want: "regimen-photos/hash/photo.jpg"},
		{name: "prefix trailing slash", prefix: "regimen-photos/", key: "hash/photo.jpg", want: "regimen-photos/hash/photo.jpg"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/hash/photo.jpg", want: "root/hash/photo.jpg"},
		{name: "nested prefix", prefix: "root/sub", key: "hash/photo.jpg", want: "root/sub/hash/photo.jpg"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}
