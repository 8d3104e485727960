package repo

import (
	"context"
)

const userColumns = `id, last_name, first_name, patronymic, year_born, COALESCE(email, ''), phone, encrypted_password,
        region_id, adm_region_id, organisation_id, mobile_group_id, user_app_id, created_at, updated_at`

// GetUserByID busca usuário pelo identificador.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetUserByPhone busca usuário pelo telefone normalizado.
func (q *Queries) GetUserByPhone(ctx context.Context, phone string) (User, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone)
	return scanUser(row)
}

// InsertUser persiste novo usuário e devolve o identificador gerado.
func (q *Queries) InsertUser(ctx context.Context, u User) (int64, error) {
	const query = `
        INSERT INTO users (last_name, first_name, patronymic, year_born, email, phone, encrypted_password,
            region_id, adm_region_id, organisation_id, mobile_group_id, user_app_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12, now(), now())
        RETURNING id
    `

	var id int64
	err := q.db.QueryRow(ctx, query,
		u.LastName, u.FirstName, u.Patronymic, u.YearBorn, u.Email, u.Phone, u.PasswordHash,
		u.RegionID, u.AdmRegionID, u.OrganisationID, u.MobileGroupID, u.ApplicationID,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "index_users_on_phone") {
			return 0, ErrPhoneTaken
		}
		return 0, err
	}
	return id, nil
}

// UpdateUser grava campos escalares e vínculos do usuário.
func (q *Queries) UpdateUser(ctx context.Context, u User) error {
	const query = `
        UPDATE users
        SET last_name = $2,
            first_name = $3,
            patronymic = $4,
            year_born = $5,
            email = NULLIF($6, ''),
            phone = $7,
            encrypted_password = $8,
            region_id = $9,
            adm_region_id = $10,
            organisation_id = $11,
            mobile_group_id = $12,
            user_app_id = $13,
            updated_at = now()
        WHERE id = $1
    `

	tag, err := q.db.Exec(ctx, query,
		u.ID, u.LastName, u.FirstName, u.Patronymic, u.YearBorn, u.Email, u.Phone, u.PasswordHash,
		u.RegionID, u.AdmRegionID, u.OrganisationID, u.MobileGroupID, u.ApplicationID,
	)
	if err != nil {
		if isUniqueViolation(err, "index_users_on_phone") {
			return ErrPhoneTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUserCurrentRoles devolve as funções de nomeação do usuário.
func (q *Queries) ListUserCurrentRoles(ctx context.Context, userID int64) ([]UserCurrentRoleWithRole, error) {
	const query = `
        SELECT ucr.id, ucr.user_id, ucr.current_role_id, ucr.uic_id, ucr.nomination_source_id,
               cr.slug, cr.name, cr.position, cr.must_have_uic, cr.must_have_tic
        FROM user_current_roles ucr
        JOIN current_roles cr ON cr.id = ucr.current_role_id
        WHERE ucr.user_id = $1
        ORDER BY cr.position, ucr.id
    `

	rows, err := q.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []UserCurrentRoleWithRole
	for rows.Next() {
		var item UserCurrentRoleWithRole
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.CurrentRoleID, &item.UicID, &item.NominationSourceID,
			&item.CurrentRole.Slug, &item.CurrentRole.Name, &item.CurrentRole.Position,
			&item.CurrentRole.MustHaveUic, &item.CurrentRole.MustHaveTic,
		); err != nil {
			return nil, err
		}
		item.CurrentRole.ID = item.CurrentRoleID
		result = append(result, item)
	}
	return result, rows.Err()
}

// UserCurrentRoleWithRole agrega vínculo com a função resolvida.
type UserCurrentRoleWithRole struct {
	UserCurrentRole
	CurrentRole CurrentRole
}

// InsertUserCurrentRole cria vínculo de função de nomeação.
func (q *Queries) InsertUserCurrentRole(ctx context.Context, ucr UserCurrentRole) (int64, error) {
	const query = `
        INSERT INTO user_current_roles (user_id, current_role_id, uic_id, nomination_source_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, now(), now())
        RETURNING id
    `

	var id int64
	if err := q.db.QueryRow(ctx, query, ucr.UserID, ucr.CurrentRoleID, ucr.UicID, ucr.NominationSourceID).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.LastName, &u.FirstName, &u.Patronymic, &u.YearBorn, &u.Email, &u.Phone, &u.PasswordHash,
		&u.RegionID, &u.AdmRegionID, &u.OrganisationID, &u.MobileGroupID, &u.ApplicationID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return User{}, notFound(err)
	}
	return u, nil
}
