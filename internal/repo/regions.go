package repo

import (
	"context"
)

// RegionByID busca região pelo identificador.
func (q *Queries) RegionByID(ctx context.Context, id int64) (Region, error) {
	var r Region
	err := q.db.QueryRow(ctx, `SELECT id, name, kind, parent_id, has_tic FROM regions WHERE id = $1`, id).
		Scan(&r.ID, &r.Name, &r.Kind, &r.ParentID, &r.HasTic)
	if err != nil {
		return Region{}, notFound(err)
	}
	return r, nil
}

// ListRegions devolve regiões de um tipo ordenadas por nome; kind 0 devolve todas.
func (q *Queries) ListRegions(ctx context.Context, kind int) ([]Region, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, name, kind, parent_id, has_tic
		FROM regions
		WHERE $1 = 0 OR kind = $1
		ORDER BY kind, name`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regions []Region
	for rows.Next() {
		var r Region
		if err := rows.Scan(&r.ID, &r.Name, &r.Kind, &r.ParentID, &r.HasTic); err != nil {
			return nil, err
		}
		regions = append(regions, r)
	}
	return regions, rows.Err()
}
