package repo

import (
	"context"
)

// GetRoleBySlug busca papel geral pelo slug.
func (q *Queries) GetRoleBySlug(ctx context.Context, slug string) (Role, error) {
	const query = `SELECT id, slug, name, COALESCE(short_name, '') FROM roles WHERE slug = $1`

	var r Role
	if err := q.db.QueryRow(ctx, query, slug).Scan(&r.ID, &r.Slug, &r.Name, &r.ShortName); err != nil {
		return Role{}, notFound(err)
	}
	return r, nil
}

// GetRoleByID busca papel geral pelo identificador.
func (q *Queries) GetRoleByID(ctx context.Context, id int64) (Role, error) {
	const query = `SELECT id, slug, name, COALESCE(short_name, '') FROM roles WHERE id = $1`

	var r Role
	if err := q.db.QueryRow(ctx, query, id).Scan(&r.ID, &r.Slug, &r.Name, &r.ShortName); err != nil {
		return Role{}, notFound(err)
	}
	return r, nil
}

// ListRoles devolve o catálogo completo de papéis.
func (q *Queries) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := q.db.Query(ctx, `SELECT id, slug, name, COALESCE(short_name, '') FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var r Role
		if err := rows.Scan(&r.ID, &r.Slug, &r.Name, &r.ShortName); err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// GetCurrentRoleByID busca função de nomeação.
func (q *Queries) GetCurrentRoleByID(ctx context.Context, id int64) (CurrentRole, error) {
	const query = `
        SELECT id, slug, name, position, must_have_uic, must_have_tic
        FROM current_roles
        WHERE id = $1
    `

	var cr CurrentRole
	if err := q.db.QueryRow(ctx, query, id).Scan(&cr.ID, &cr.Slug, &cr.Name, &cr.Position, &cr.MustHaveUic, &cr.MustHaveTic); err != nil {
		return CurrentRole{}, notFound(err)
	}
	return cr, nil
}

// ListUserRoles devolve os vínculos persistidos do usuário com o papel resolvido.
func (q *Queries) ListUserRoles(ctx context.Context, userID int64) ([]UserRole, error) {
	const query = `
        SELECT ur.id, ur.user_id, r.id, r.slug, r.name, COALESCE(r.short_name, '')
        FROM user_roles ur
        JOIN roles r ON r.id = ur.role_id
        WHERE ur.user_id = $1
        ORDER BY ur.id
    `

	rows, err := q.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []UserRole
	for rows.Next() {
		var ur UserRole
		if err := rows.Scan(&ur.ID, &ur.UserID, &ur.Role.ID, &ur.Role.Slug, &ur.Role.Name, &ur.Role.ShortName); err != nil {
			return nil, err
		}
		result = append(result, ur)
	}
	return result, rows.Err()
}

// InsertUserRole cria vínculo; repetições do par (usuário, papel) são ignoradas.
func (q *Queries) InsertUserRole(ctx context.Context, userID, roleID int64) error {
	_, err := q.db.Exec(ctx, `
        INSERT INTO user_roles (user_id, role_id, created_at)
        VALUES ($1, $2, now())
        ON CONFLICT (user_id, role_id) DO NOTHING
    `, userID, roleID)
	return err
}

// DeleteUserRole remove vínculo pelo identificador.
func (q *Queries) DeleteUserRole(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, `DELETE FROM user_roles WHERE id = $1`, id)
	return err
}
