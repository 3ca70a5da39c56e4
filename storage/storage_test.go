package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/irsalhamdi/prep-center/config"
)

func TestDiskSave(t *testing.T) {
	root := t.TempDir()
	d := NewDisk(root, "/uploads/")

	url, err := d.Save(context.Background(), "avatars/a.png", "image/png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if url != "/uploads/avatars/a.png" {
		t.Fatalf("unexpected url %q", url)
	}

	b, err := os.ReadFile(filepath.Join(root, "avatars", "a.png"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "png-bytes" {
		t.Fatalf("unexpected content %q", b)
	}
}

func TestDiskSaveStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	d := NewDisk(filepath.Join(root, "uploads"), "/uploads")

	url, err := d.Save(context.Background(), "../../escape.png", "image/png", strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}
	if url != "/uploads/escape.png" {
		t.Fatalf("unexpected url %q", url)
	}
	if _, err := os.Stat(filepath.Join(root, "uploads", "escape.png")); err != nil {
		t.Fatalf("file not written below the root: %v", err)
	}
}

type fakePutter struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.in, f.body = in, string(b)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Save(t *testing.T) {
	fp := &fakePutter{}
	s := &S3{client: fp, bucket: "avatars-bucket", publicURL: "https://cdn.example.kz"}

	url, err := s.Save(context.Background(), "/avatars/b.webp", "image/webp", strings.NewReader("webp-bytes"))
	if err != nil {
		t.Fatal(err)
	}

	if url != "https://cdn.example.kz/avatars/b.webp" {
		t.Fatalf("unexpected url %q", url)
	}
	if *fp.in.Bucket != "avatars-bucket" || *fp.in.Key != "avatars/b.webp" || *fp.in.ContentType != "image/webp" {
		t.Fatalf("unexpected put input %+v", fp.in)
	}
	if fp.body != "webp-bytes" {
		t.Fatalf("unexpected body %q", fp.body)
	}
}

func TestS3SaveFailure(t *testing.T) {
	s := &S3{client: &fakePutter{err: errors.New("access denied")}, bucket: "b", publicURL: "https://x"}

	if _, err := s.Save(context.Background(), "k", "image/png", strings.NewReader("x")); err == nil {
		t.Fatal("expected an error")
	}
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		cfg  config.Storage
		want string
	}{
		{config.Storage{Bucket: "b", Region: "eu-central-1"}, "https://b.s3.eu-central-1.amazonaws.com"},
		{config.Storage{Bucket: "b", Endpoint: "http://minio:9000/"}, "http://minio:9000/b"},
		{config.Storage{Bucket: "b", Endpoint: "http://minio:9000", PublicURL: "https://cdn.example.kz/"}, "https://cdn.example.kz"},
	}

	for _, tt := range tests {
		if got := publicURL(tt.cfg); got != tt.want {
			t.Errorf("publicURL(%+v) = %q, want %q", tt.cfg, got, tt.want)
		}
	}
}
