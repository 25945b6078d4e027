package backup

import (
	"strings"

	"github.com/shyim/db-auto-backup/internal/docker"
)

// Target is a container paired with the backup type that applies to it
type Target struct {
	Container docker.ContainerInfo
	Type      BackupType
}

// CandidateNames strips the tag from each image reference, so postgres:16
// becomes postgres and myrepo/postgres:15 becomes myrepo/postgres.
func CandidateNames(imageTags []string) []string {
	names := make([]string, 0, len(imageTags))
	for _, tag := range imageTags {
		names = append(names, stripTag(tag))
	}
	return names
}

func stripTag(ref string) string {
	idx := strings.LastIndex(ref, ":")
	// A colon before the last slash belongs to a registry host:port
	if idx == -1 || idx < strings.LastIndex(ref, "/") {
		return ref
	}
	return ref[:idx]
}

// SelectTargets returns the containers that have a matching backup type, in
// the order they were listed.
func SelectTargets(containers []docker.ContainerInfo, registry *Registry) []Target {
	var targets []Target
	for _, container := range containers {
		bt, ok := registry.Resolve(CandidateNames(container.ImageTags))
		if !ok {
			continue
		}
		targets = append(targets, Target{Container: container, Type: bt})
	}
	return targets
}
