package archive

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestDatasetKey(t *testing.T) {
	tests := []struct {
		id   int64
		name string
		want string
	}{
		{7, "people", "datasets/7/people.csv"},
		{12, "../../etc/passwd", "datasets/12/passwd.csv"},
		{3, "a/b", "datasets/3/b.csv"},
	}
	for _, tt := range tests {
		if got := DatasetKey(tt.id, tt.name); got != tt.want {
			t.Errorf("DatasetKey(%d, %q) = %q, want %q", tt.id, tt.name, got, tt.want)
		}
	}
}

func TestS3Archive_Put(t *testing.T) {
	var (
		mu   sync.Mutex
		puts = map[string]string{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusOK)
			return
		}
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		puts[r.URL.Path] = string(body)
		mu.Unlock()
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a, err := NewS3Archive(S3Config{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		Bucket:    "uploads",
		AccessKey: "key",
		SecretKey: "secret",
	})
	if err != nil {
		t.Fatalf("NewS3Archive: %v", err)
	}

	if err := a.Put(context.Background(), "datasets/1/people.csv", []byte("id\n1\n"), "text/csv"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if got, ok := puts["/uploads/datasets/1/people.csv"]; !ok || !strings.Contains(got, "id\n1\n") {
		t.Errorf("object not uploaded: %v", puts)
	}
}

func TestNop(t *testing.T) {
	var a Archiver = Nop{}
	if err := a.Put(context.Background(), "k", nil, ""); err != nil {
		t.Fatal(err)
	}
}
