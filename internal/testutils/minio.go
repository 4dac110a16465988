//go:build integration

package testutils

import (
	"context"
	"fmt"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
	"gocloud.dev/blob"
)

const (
	minioUser     = "minioadmin"
	minioPassword = "minioadmin"
)

// Minio is a Minio server holding one empty bucket, used as an S3 output
// destination. Everything is torn down when the test ends.
type Minio struct {
	// URL opens the bucket through the s3blob driver.
	URL string

	// Bucket is an open handle on the same bucket for checking results.
	Bucket *blob.Bucket
}

// StartMinio starts Minio and creates bucketName in it.
func StartMinio(t *testing.T, ctx context.Context, bucketName string) *Minio {
	t.Helper()

	nw, err := network.New(ctx)
	if err != nil {
		t.Fatalf("create network: %v", err)
	}
	testcontainers.CleanupNetwork(t, nw)

	server := startContainer(t, ctx, testcontainers.ContainerRequest{
		Image:          "minio/minio:latest",
		ExposedPorts:   []string{"9000/tcp"},
		Networks:       []string{nw.Name},
		NetworkAliases: map[string][]string{nw.Name: {"minio"}},
		Env: map[string]string{
			"MINIO_ROOT_USER":     minioUser,
			"MINIO_ROOT_PASSWORD": minioPassword,
		},
		Cmd:        []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/ready").WithPort("9000"),
	})

	createBucket(t, ctx, nw.Name, bucketName)

	endpoint, err := server.PortEndpoint(ctx, "9000/tcp", "http")
	if err != nil {
		t.Fatalf("minio endpoint: %v", err)
	}

	// s3blob takes credentials from the environment.
	t.Setenv("AWS_ACCESS_KEY_ID", minioUser)
	t.Setenv("AWS_SECRET_ACCESS_KEY", minioPassword)

	m := &Minio{
		URL: fmt.Sprintf("s3://%s?endpoint=%s&use_path_style=true&disable_https=true&region=us-east-1",
			bucketName, endpoint),
	}
	m.Bucket, err = blob.OpenBucket(ctx, m.URL)
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	t.Cleanup(func() { m.Bucket.Close() })

	return m
}

// createBucket runs the mc client on the Minio network and fails the test
// unless it exits cleanly.
func createBucket(t *testing.T, ctx context.Context, networkName, bucketName string) {
	t.Helper()

	script := fmt.Sprintf("mc alias set local http://minio:9000 %s %s && mc mb --ignore-existing local/%s",
		minioUser, minioPassword, bucketName)

	mc := startContainer(t, ctx, testcontainers.ContainerRequest{
		Image:      "minio/mc:latest",
		Networks:   []string{networkName},
		Entrypoint: []string{"/bin/sh", "-c"},
		Cmd:        []string{script},
		WaitingFor: wait.ForExit(),
	})

	state, err := mc.State(ctx)
	if err != nil {
		t.Fatalf("mc state: %v", err)
	}
	if state.ExitCode != 0 {
		t.Fatalf("create bucket %s: mc exited with %d", bucketName, state.ExitCode)
	}
}

func startContainer(t *testing.T, ctx context.Context, req testcontainers.ContainerRequest) testcontainers.Container {
	t.Helper()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	testcontainers.CleanupContainer(t, c)
	if err != nil {
		t.Fatalf("start %s: %v", req.Image, err)
	}
	return c
}
