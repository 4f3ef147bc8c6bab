package storage

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"pycm/internal/advisor"
	pycmerrors "pycm/internal/errors"
)

// Run is one persisted analysis summary.
type Run struct {
	ID                        string  `json:"id"`
	ProjectPath               string  `json:"projectPath"`
	CreatedAt                 string  `json:"createdAt"`
	ModuleCount               int     `json:"moduleCount"`
	TotalInternalDependencies int     `json:"totalInternalDependencies"`
	AverageInstability        float64 `json:"averageInstability"`
	DependencyDensity         float64 `json:"dependencyDensity"`
	OverallHealth             string  `json:"overallHealth"`
}

// SaveRun persists the run summary and all per-module metrics in one
// transaction and returns the generated run id.
func (db *DB) SaveRun(result *advisor.Result) (string, error) {
	runID := uuid.NewString()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	err := db.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO runs (id, project_path, created_at, module_count,
				total_internal_dependencies, average_instability,
				dependency_density, overall_health)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID,
			result.Project.ProjectPath,
			createdAt,
			result.Project.ModuleCount,
			result.Project.TotalInternalDependencies,
			result.Project.AverageInstability,
			result.Project.DependencyDensity,
			result.Summary.OverallHealth,
		)
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO module_metrics (run_id, module_path,
				afferent_coupling, efferent_coupling, instability,
				abstractness, distance_from_main_sequence, category,
				lines_of_code)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, m := range result.Project.ModuleMetrics {
			if _, err := stmt.Exec(
				runID,
				m.ModulePath,
				m.AfferentCoupling,
				m.EfferentCoupling,
				m.Instability,
				m.Abstractness,
				m.DistanceFromMainSequence,
				string(m.Category),
				m.LinesOfCode,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", pycmerrors.Wrap(pycmerrors.StorageFailed, "failed to save run", err)
	}

	db.logger.Info("analysis run saved", map[string]interface{}{
		"run_id":  runID,
		"modules": result.Project.ModuleCount,
	})
	return runID, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.conn.Query(`
		SELECT id, project_path, created_at, module_count,
			total_internal_dependencies, average_instability,
			dependency_density, overall_health
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, pycmerrors.Wrap(pycmerrors.StorageFailed, "failed to list runs", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.ID, &r.ProjectPath, &r.CreatedAt, &r.ModuleCount,
			&r.TotalInternalDependencies, &r.AverageInstability,
			&r.DependencyDensity, &r.OverallHealth,
		); err != nil {
			return nil, pycmerrors.Wrap(pycmerrors.StorageFailed, "failed to scan run", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, pycmerrors.Wrap(pycmerrors.StorageFailed, "failed to list runs", err)
	}
	return runs, nil
}
