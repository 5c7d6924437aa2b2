// Package container manages throwaway docker containers for integration
// tests. Containers are reused across runs when one with the same name is
// already up.
package container

import (
	"fmt"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

type ContainerType string

const (
	ContainerTypeMongoDB ContainerType = "mongodb"
)

type ContainerInfo struct {
	Name string
	Type ContainerType
}

type ContainerBuilder struct {
	pool       *dockertest.Pool
	containers map[string]ContainerInfo
}

func NewContainerBuilder(endpoint string) (*ContainerBuilder, error) {
	pool, err := dockertest.NewPool(endpoint)
	if err != nil {
		return nil, fmt.Errorf("connect to docker: %w", err)
	}
	if err := pool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("ping docker: %w", err)
	}
	return &ContainerBuilder{
		pool:       pool,
		containers: map[string]ContainerInfo{},
	}, nil
}

// FindContainer returns the running container with the given name, or nil.
func (b *ContainerBuilder) FindContainer(name string) (*docker.APIContainers, error) {
	containers, err := b.pool.Client.ListContainers(docker.ListContainersOptions{All: true})
	if err != nil {
		return nil, err
	}
	for i := range containers {
		for _, containerName := range containers[i].Names {
			if containerName == "/"+name || containerName == name {
				return &containers[i], nil
			}
		}
	}
	return nil, nil
}

func (b *ContainerBuilder) AddContainer(id string, info ContainerInfo) {
	b.containers[id] = info
}

func (b *ContainerBuilder) RunWithOptions(options *dockertest.RunOptions) (*dockertest.Resource, error) {
	return b.pool.RunWithOptions(options, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
}

func (b *ContainerBuilder) Retry(op func() error) error {
	return b.pool.Retry(op)
}

// PruneAll removes every container the builder started or adopted.
func (b *ContainerBuilder) PruneAll() error {
	for id := range b.containers {
		err := b.pool.Client.RemoveContainer(docker.RemoveContainerOptions{
			ID:            id,
			Force:         true,
			RemoveVolumes: true,
		})
		if err != nil {
			return err
		}
		delete(b.containers, id)
	}
	return nil
}
