package repo

import (
	"context"
)

const uicColumns = `id, kind, COALESCE(number, 0), COALESCE(name, ''), region_id, adm_region_id`

// PrecinctCommissionByNumber busca UIK pelo número.
func (q *Queries) PrecinctCommissionByNumber(ctx context.Context, number int) (Uic, error) {
	row := q.db.QueryRow(ctx, `SELECT `+uicColumns+` FROM uics WHERE kind = $1 AND number = $2 ORDER BY id LIMIT 1`, UicKindPrecinct, number)
	return scanUic(row)
}

// CommissionByNumber busca comissão de qualquer tipo pelo número.
func (q *Queries) CommissionByNumber(ctx context.Context, number int) (Uic, error) {
	row := q.db.QueryRow(ctx, `SELECT `+uicColumns+` FROM uics WHERE number = $1 ORDER BY id LIMIT 1`, number)
	return scanUic(row)
}

// TerritorialCommissionByName busca TIK pelo nome exato.
func (q *Queries) TerritorialCommissionByName(ctx context.Context, name string) (Uic, error) {
	row := q.db.QueryRow(ctx, `SELECT `+uicColumns+` FROM uics WHERE kind = $1 AND name = $2 ORDER BY id LIMIT 1`, UicKindTerritorial, name)
	return scanUic(row)
}

// FirstTerritorialCommission devolve a primeira TIK vinculada à região.
func (q *Queries) FirstTerritorialCommission(ctx context.Context, regionID int64) (Uic, error) {
	row := q.db.QueryRow(ctx, `
        SELECT `+uicColumns+`
        FROM uics
        WHERE kind = $1 AND (region_id = $2 OR adm_region_id = $2)
        ORDER BY id
        LIMIT 1
    `, UicKindTerritorial, regionID)
	return scanUic(row)
}

func scanUic(row rowScanner) (Uic, error) {
	var u Uic
	if err := row.Scan(&u.ID, &u.Kind, &u.Number, &u.Name, &u.RegionID, &u.AdmRegionID); err != nil {
		return Uic{}, notFound(err)
	}
	return u, nil
}
