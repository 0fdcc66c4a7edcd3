package collector

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/summon/internal/domain"
	"github.com/MrSnakeDoc/summon/internal/shell"
)

const startAppsScript = "Get-StartApps | ConvertTo-Csv -NoTypeInformation"

// StartMenu lists the applications registered in the Windows start menu,
// packaged apps included. Each one is started through its AppID.
type StartMenu struct {
	Shell shell.Runner
}

func (s *StartMenu) Collect(ctx context.Context) ([]domain.RawCandidate, error) {
	if !isWindows() {
		return nil, ErrUnsupported
	}

	output, err := s.Shell.Run(ctx, startAppsScript)
	if err != nil {
		return nil, fmt.Errorf("failed to list start apps: %w", err)
	}

	return parseStartApps(output), nil
}

// parseStartApps maps Get-StartApps rows {Name, AppID} to app identifiers.
func parseStartApps(output string) []domain.RawCandidate {
	rows := readCSV(output)
	candidates := make([]domain.RawCandidate, 0, len(rows))

	for _, row := range rows {
		name, appID := row["Name"], row["AppID"]
		if name == "" || appID == "" {
			continue
		}
		candidates = append(candidates, domain.RawCandidate{
			Name:     name,
			Path:     domain.AppsFolderPrefix + appID,
			Metadata: map[string]string{"appid": appID},
		})
	}

	return candidates
}
