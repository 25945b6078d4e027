package docker

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

// ContainerInfo holds relevant container information
type ContainerInfo struct {
	ID        string
	Name      string
	ImageTags []string // repository:tag references of the container's image
}

// Client wraps the Docker API client
type Client struct {
	cli *client.Client
}

// NewClient creates a new Docker client
func NewClient(ctx context.Context, host string) (*Client, error) {
	opts := []client.Opt{
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	}

	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, err
	}

	// Verify connection
	if _, err := cli.Ping(ctx); err != nil {
		_ = cli.Close()
		return nil, err
	}

	return &Client{cli: cli}, nil
}

// Close closes the Docker client
func (c *Client) Close() error {
	return c.cli.Close()
}

// ListContainers returns all running containers in the order the daemon
// reports them, together with the tags of their images.
func (c *Client) ListContainers(ctx context.Context) ([]ContainerInfo, error) {
	containers, err := c.cli.ContainerList(ctx, container.ListOptions{
		All: false, // Only running containers
	})
	if err != nil {
		return nil, err
	}

	// Several containers frequently share an image
	tagsByImage := make(map[string][]string)

	result := make([]ContainerInfo, 0, len(containers))
	for _, ctr := range containers {
		tags, ok := tagsByImage[ctr.ImageID]
		if !ok {
			tags = c.imageTags(ctx, ctr.ImageID)
			tagsByImage[ctr.ImageID] = tags
		}

		result = append(result, ContainerInfo{
			ID:        ctr.ID,
			Name:      containerName(ctr.Names, ctr.ID),
			ImageTags: tags,
		})
	}

	return result, nil
}

// imageTags returns the repository tags of an image. An image that can't be
// inspected has no tags, which leaves its containers unmatched.
func (c *Client) imageTags(ctx context.Context, imageID string) []string {
	inspect, err := c.cli.ImageInspect(ctx, imageID)
	if err != nil {
		slog.Warn("failed to inspect image", "image_id", imageID, "error", err)
		return nil
	}
	return inspect.RepoTags
}

// containerName picks the primary name of a container (without the leading /)
func containerName(names []string, id string) string {
	for _, name := range names {
		name = strings.TrimPrefix(name, "/")
		// Legacy links show up as /other/alias
		if name != "" && !strings.Contains(name, "/") {
			return name
		}
	}
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// ExecResult contains the result of a container exec
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Exec runs a command in a container and buffers its output
func (c *Client) Exec(ctx context.Context, containerID string, cmd []string) (*ExecResult, error) {
	var stdout, stderr bytes.Buffer
	exitCode, err := c.ExecStream(ctx, containerID, cmd, nil, &stdout, &stderr)
	if err != nil {
		return nil, err
	}

	return &ExecResult{
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

// ExecStream runs a command in a container with the given extra environment and
// copies the demultiplexed stdout and stderr frames to the writers as they arrive.
func (c *Client) ExecStream(ctx context.Context, containerID string, cmd []string, env []string, stdout, stderr io.Writer) (int, error) {
	execConfig := container.ExecOptions{
		Cmd:          cmd,
		Env:          env,
		AttachStdout: true,
		AttachStderr: true,
	}

	execID, err := c.cli.ContainerExecCreate(ctx, containerID, execConfig)
	if err != nil {
		return -1, err
	}

	resp, err := c.cli.ContainerExecAttach(ctx, execID.ID, container.ExecStartOptions{})
	if err != nil {
		return -1, err
	}
	defer resp.Close()

	if stderr == nil {
		stderr = io.Discard
	}

	if _, err := stdcopy.StdCopy(stdout, stderr, resp.Reader); err != nil {
		return -1, err
	}

	// Get exit code
	inspectResp, err := c.cli.ContainerExecInspect(ctx, execID.ID)
	if err != nil {
		return -1, err
	}

	return inspectResp.ExitCode, nil
}
