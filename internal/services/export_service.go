package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"github.com/akarpov/projecttodo/internal/gist"
	"github.com/akarpov/projecttodo/internal/models"
)

// JS Date.toDateString() layout, kept for export compatibility.
const exportDateLayout = "Mon Jan 02 2006"

type exportServiceImpl struct {
	logger     zerolog.Logger
	projects   ProjectService
	gistClient GistClient
	exportsDir string
	writeLocal bool
}

func NewExportService(
	logger zerolog.Logger,
	projects ProjectService,
	gistClient GistClient,
	exportsDir string,
	writeLocal bool,
) ExportService {
	return &exportServiceImpl{
		logger:     logger,
		projects:   projects,
		gistClient: gistClient,
		exportsDir: exportsDir,
		writeLocal: writeLocal,
	}
}

func (s *exportServiceImpl) ExportProjectSummary(ctx context.Context, userID, projectID string) (string, error) {
	// The read goes through the project service so the ownership check
	// applies here exactly as it does everywhere else.
	project, err := s.projects.GetProjectByID(ctx, userID, projectID)
	if err != nil {
		return "", err
	}

	markdown := renderProjectSummary(project)
	fileName := exportFileName(project.Title)

	if s.writeLocal {
		err = s.writeLocalFile(fileName, markdown)
		if err != nil {
			// A failed local write must not block the gist.
			s.logger.Warn().
				Err(err).
				Str("file", fileName).
				Msg("failed to write local export file")
		}
	}

	g, err := s.gistClient.CreateGist(
		ctx,
		"Project Summary: "+project.Title,
		map[string]gist.File{fileName: {Content: markdown}},
		false, // secret gist
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", project.ID).
			Msg("failed to create gist")
		return "", err
	}

	s.logger.Info().
		Str("project_id", project.ID).
		Str("gist_url", g.HTMLURL).
		Msg("exported project summary")
	return g.HTMLURL, nil
}

func (s *exportServiceImpl) writeLocalFile(fileName, content string) error {
	err := os.MkdirAll(s.exportsDir, 0o755)
	if err != nil {
		return fmt.Errorf("failed to create exports directory: %w", err)
	}

	filePath := filepath.Join(s.exportsDir, fileName)

	// Concurrent exports of the same project write the same path.
	lock := flock.New(filePath + ".lock")
	err = lock.Lock()
	if err != nil {
		return fmt.Errorf("failed to lock export file: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	err = os.WriteFile(filePath, []byte(content), 0o644)
	if err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	s.logger.Debug().
		Str("path", filePath).
		Msg("wrote local export file")
	return nil
}

func renderProjectSummary(project *models.Project) string {
	total := len(project.Todos)
	completed := 0
	for _, todo := range project.Todos {
		if todo.Status == models.StatusCompleted {
			completed++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", project.Title)
	fmt.Fprintf(&b, "**Summary:** %d / %d completed.\n\n", completed, total)

	b.WriteString("## Pending\n")
	for _, todo := range project.Todos {
		if todo.Status != models.StatusPending {
			continue
		}
		fmt.Fprintf(&b, "- [ ] %s (Created: %s)\n",
			todo.Description, todo.CreatedAt.Format(exportDateLayout))
	}

	b.WriteString("\n## Completed\n")
	for _, todo := range project.Todos {
		if todo.Status != models.StatusCompleted {
			continue
		}
		completedAt := todo.UpdatedAt
		if todo.CompletedAt != nil {
			completedAt = *todo.CompletedAt
		}
		fmt.Fprintf(&b, "- [x] %s (Completed: %s)\n",
			todo.Description, completedAt.Format(exportDateLayout))
	}

	return b.String()
}

func exportFileName(title string) string {
	return strings.Join(strings.Fields(title), "_") + ".md"
}
