package changespec

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/amonks/changespec/internal/atomicfile"
)

// projectFile is the on-disk shape of a project's ChangeSpec file.
type projectFile struct {
	ChangeSpecs []ChangeSpec `json:"changespecs"`
}

// FileStore persists ChangeSpecs as one JSON file per project under dir.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir (usually <data>/projects).
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the directory holding project files.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) projectPath(project string) string {
	return filepath.Join(s.dir, project+".json")
}

// Projects returns the names of all projects with a ChangeSpec file.
func (s *FileStore) Projects() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read projects dir: %w", err)
	}

	var projects []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		projects = append(projects, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(projects)
	return projects, nil
}

// LoadAll reads every ChangeSpec across all projects.
//
// A ChangeSpec carrying a status outside the enumeration fails the whole
// load with ErrUnknownStatus.
func (s *FileStore) LoadAll() ([]ChangeSpec, error) {
	projects, err := s.Projects()
	if err != nil {
		return nil, err
	}

	var all []ChangeSpec
	seen := make(map[string]string)
	for _, project := range projects {
		items, err := s.loadProject(project)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if other, ok := seen[item.Name]; ok {
				return nil, fmt.Errorf("%w: %q in projects %s and %s", ErrDuplicateName, item.Name, other, project)
			}
			seen[item.Name] = project
			all = append(all, item)
		}
	}
	return all, nil
}

// LoadProject reads the ChangeSpecs belonging to one project.
func (s *FileStore) LoadProject(project string) ([]ChangeSpec, error) {
	return s.loadProject(project)
}

func (s *FileStore) loadProject(project string) ([]ChangeSpec, error) {
	path := s.projectPath(project)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read project file %s: %w", path, err)
	}

	var file projectFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse project file %s: %w", path, err)
	}

	for i := range file.ChangeSpecs {
		item := &file.ChangeSpecs[i]
		if item.Project == "" {
			item.Project = project
		}
		if item.Project != project {
			return nil, fmt.Errorf("%w: %q is in %s.json but names project %s", ErrProjectMismatch, item.Name, project, item.Project)
		}
		if err := ValidateChangeSpec(item); err != nil {
			return nil, fmt.Errorf("project %s: changespec %q: %w", project, item.Name, err)
		}
	}
	return file.ChangeSpecs, nil
}

// Find returns the ChangeSpec with the given name.
func (s *FileStore) Find(name string) (ChangeSpec, error) {
	all, err := s.LoadAll()
	if err != nil {
		return ChangeSpec{}, err
	}
	for _, item := range all {
		if item.Name == name {
			return item, nil
		}
	}
	return ChangeSpec{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Save upserts c into its project's file, matching on name.
func (s *FileStore) Save(c ChangeSpec) error {
	if err := ValidateChangeSpec(&c); err != nil {
		return err
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = c.UpdatedAt
	}

	items, err := s.loadProject(c.Project)
	if err != nil {
		return err
	}

	replaced := false
	for i := range items {
		if items[i].Name == c.Name {
			items[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, c)
	}

	data, err := json.MarshalIndent(projectFile{ChangeSpecs: items}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal project %s: %w", c.Project, err)
	}
	data = append(data, '\n')

	if err := atomicfile.WriteFile(s.projectPath(c.Project), data, 0o644); err != nil {
		return fmt.Errorf("save project %s: %w", c.Project, err)
	}
	return nil
}
