package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectFile is the optional per-project configuration file name,
// looked up in the project root.
const ProjectFile = "ignite.yaml"

// Project describes the toolchain project being driven.
type Project struct {
	// Name is the distribution name
	Name string `yaml:"name"`

	// Version is the project version stamped into manifests
	Version string `yaml:"version"`

	// Package is the toolchain package to build/test/check
	Package string `yaml:"package"`

	// Target is the compilation target triple
	Target string `yaml:"target"`

	// Binary is the artifact file name produced by a build
	Binary string `yaml:"binary"`

	// Descriptor is the project descriptor file expected in the root
	Descriptor string `yaml:"descriptor"`

	// AuxFiles are extra files staged into dist/boot during distribution
	AuxFiles []string `yaml:"aux_files"`
}

// DefaultProject returns the built-in project settings for the Ignite
// bootloader tree.
func DefaultProject() Project {
	return Project{
		Name:       "ignite",
		Version:    "0.4.0",
		Package:    "ignite",
		Target:     "x86_64-unknown-uefi",
		Binary:     "ignite.efi",
		Descriptor: "Cargo.toml",
		AuxFiles:   []string{"ignite.conf"},
	}
}

// LoadProject reads <root>/ignite.yaml over the defaults. A missing file
// is not an error; an unparseable one is.
func LoadProject(root string) (Project, error) {
	p := DefaultProject()

	path := filepath.Join(root, ProjectFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, fmt.Errorf("read %s: %w", ProjectFile, err)
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return DefaultProject(), fmt.Errorf("parse %s: %w", ProjectFile, err)
	}
	return p, nil
}

// ArtifactPath returns the build output path for a profile. The verbose
// profile shares the debug output directory.
func (p Project) ArtifactPath(paths Paths, profile string) string {
	dir := profile
	if profile == "verbose" {
		dir = "debug"
	}
	return filepath.Join(paths.Target, p.Target, dir, p.Binary)
}

// DescriptorPath returns the project descriptor location.
func (p Project) DescriptorPath(paths Paths) string {
	return filepath.Join(paths.Root, p.Descriptor)
}
