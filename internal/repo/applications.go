package repo

import (
	"context"
)

// GetApplication busca requerimento com as funções pedidas na ordem de cadastro.
func (q *Queries) GetApplication(ctx context.Context, id int64) (Application, error) {
	const query = `
        SELECT id, last_name, first_name, patronymic, year_born, COALESCE(email, ''), phone,
               region_id, adm_region_id, organisation_id, can_be_observer, COALESCE(uic, ''), state, created_at
        FROM user_apps
        WHERE id = $1
    `

	var a Application
	err := q.db.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.LastName, &a.FirstName, &a.Patronymic, &a.YearBorn, &a.Email, &a.Phone,
		&a.RegionID, &a.AdmRegionID, &a.OrganisationID, &a.CanBeObserver, &a.UicNumber, &a.State, &a.CreatedAt,
	)
	if err != nil {
		return Application{}, notFound(err)
	}

	rows, err := q.db.Query(ctx, `
        SELECT id, user_app_id, current_role_id, COALESCE(value, '')
        FROM user_app_current_roles
        WHERE user_app_id = $1
        ORDER BY id
    `, id)
	if err != nil {
		return Application{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var cr ApplicationCurrentRole
		if err := rows.Scan(&cr.ID, &cr.ApplicationID, &cr.CurrentRoleID, &cr.Value); err != nil {
			return Application{}, err
		}
		a.CurrentRoles = append(a.CurrentRoles, cr)
	}
	if err := rows.Err(); err != nil {
		return Application{}, err
	}

	return a, nil
}

// ApproveApplication marca o requerimento como aprovado uma única vez.
// Devolve false quando já estava aprovado.
func (q *Queries) ApproveApplication(ctx context.Context, id int64) (bool, error) {
	tag, err := q.db.Exec(ctx, `
        UPDATE user_apps
        SET state = $2, updated_at = now()
        WHERE id = $1 AND state <> $2
    `, id, ApplicationStateApproved)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
