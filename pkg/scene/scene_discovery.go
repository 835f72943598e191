package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/loaders"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// DefaultSceneName is rendered when no scene is requested
const DefaultSceneName = "four-spheres"

// ErrUnknownScene is returned when a scene name matches no builtin scene or scene file
var ErrUnknownScene = errors.New("unknown scene")

const (
	builtinGroup = "Built-in Scenes"
	fileGroup    = "Scene Files"
	filePrefix   = "file:"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath"`    // Path to the scene file (file type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// Options controls how a named scene is created
type Options struct {
	ScenesDir string                // Directory searched for file: scenes
	Sampler   core.Sampler          // Random source for procedurally generated scenes
	Camera    renderer.CameraConfig // Non-zero fields override the scene's camera
}

// ListBuiltinScenes returns the scenes compiled into the program
func ListBuiltinScenes() []SceneInfo {
	return []SceneInfo{
		{
			ID:          "four-spheres",
			Name:        "Four Spheres",
			DisplayName: "Four Spheres",
			Description: "Diffuse, fuzzy metal and hollow glass spheres with depth of field",
			Group:       builtinGroup,
			Type:        "builtin",
		},
		{
			ID:          "ground",
			Name:        "Ground",
			DisplayName: "Ground",
			Description: "A single ground sphere shaded by its normals",
			Group:       builtinGroup,
			Type:        "builtin",
		},
		{
			ID:          "random-spheres",
			Name:        "Random Spheres",
			DisplayName: "Random Spheres",
			Description: "Field of random small spheres around three large ones",
			Group:       builtinGroup,
			Type:        "builtin",
		},
	}
}

// ListFileScenes scans dir for YAML scene files.
// A missing directory yields an empty list; files that fail to parse are skipped with a warning.
func ListFileScenes(dir string) ([]SceneInfo, error) {
	if dir == "" {
		return []SceneInfo{}, nil
	}
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
		}
		files = append(files, matches...)
	}

	scenes := make([]SceneInfo, 0, len(files))
	for _, filePath := range files {
		sf, err := loaders.LoadSceneFile(filePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping scene file %s: %v\n", filePath, err)
			continue
		}
		scenes = append(scenes, fileSceneInfo(filePath, sf))
	}

	// Sort scenes by display name
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

func fileSceneInfo(filePath string, sf *loaders.SceneFile) SceneInfo {
	stem := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	name := sf.Name
	if name == "" {
		name = stem
	}
	return SceneInfo{
		ID:          filePrefix + stem,
		Name:        name,
		DisplayName: titleCase(name),
		Description: sf.Description,
		Group:       fileGroup,
		Type:        "file",
		FilePath:    filePath,
	}
}

// ListAllScenes returns builtin scenes followed by the scene files found in dir
func ListAllScenes(dir string) (ScenesResponse, error) {
	var response ScenesResponse

	fileScenes, err := ListFileScenes(dir)
	if err != nil {
		return response, fmt.Errorf("failed to list scene files: %w", err)
	}

	response.Groups = append(response.Groups, SceneGroup{
		Name:   builtinGroup,
		Scenes: ListBuiltinScenes(),
	})
	if len(fileScenes) > 0 {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   fileGroup,
			Scenes: fileScenes,
		})
	}

	return response, nil
}

// Create builds the scene identified by name: a builtin ID, a "file:<name>" ID
// resolved in opts.ScenesDir, or a path to a .yaml scene file
func Create(name string, opts Options) (*Scene, error) {
	if name == "" {
		name = DefaultSceneName
	}

	switch name {
	case "ground":
		return NewGroundScene(opts.Camera), nil
	case "four-spheres":
		return NewFourSpheresScene(opts.Camera), nil
	case "random-spheres":
		sampler := opts.Sampler
		if sampler == nil {
			sampler = core.NewSeededSampler(0)
		}
		return NewRandomSpheresScene(sampler, opts.Camera), nil
	}

	path, err := resolveScenePath(name, opts.ScenesDir)
	if err != nil {
		return nil, err
	}

	sf, err := loaders.LoadSceneFile(path)
	if err != nil {
		return nil, err
	}
	return FromFile(sf, opts.Camera)
}

func resolveScenePath(name, dir string) (string, error) {
	if strings.HasPrefix(name, filePrefix) {
		stem := strings.TrimPrefix(name, filePrefix)
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, stem+ext)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
		return "", fmt.Errorf("%w: %q not found in %q", ErrUnknownScene, name, dir)
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".yaml" || ext == ".yml" {
		return name, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScene, name)
}

// titleCase converts a filename-style string to title case
// e.g., "three-spheres" -> "Three Spheres"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}

	return strings.Join(words, " ")
}
