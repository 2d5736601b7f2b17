package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-gin-gorm-accounts/internal/domain"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// UserRepo is the gorm adapter of domain.UserRepository. Delete of an absent
// id returns domain.ErrNotFound.
type UserRepo struct{ db *gorm.DB }

var _ domain.UserRepository = (*UserRepo)(nil)

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) filtered(ctx context.Context, f domain.UserFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&UserModel{})
	if f.Role != nil {
		q = q.Where("role = ?", string(*f.Role))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
		q = q.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}
	return q
}

func (r *UserRepo) Count(ctx context.Context, f domain.UserFilter) (int64, error) {
	var n int64
	if err := r.filtered(ctx, f).Count(&n).Error; err != nil {
		return 0, mapErr("repo.Count", err)
	}
	return n, nil
}

func (r *UserRepo) FindMany(ctx context.Context, q domain.UserQuery) ([]domain.User, error) {
	desc := q.SortDir != domain.SortAsc
	var ms []UserModel
	err := r.filtered(ctx, q.UserFilter).
		Preload("Profile").
		Order(clause.OrderByColumn{Column: clause.Column{Name: q.SortField.Column()}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc}).
		Limit(q.PageSize).
		Offset(q.Offset()).
		Find(&ms).Error
	if err != nil {
		return nil, mapErr("repo.FindMany", err)
	}
	out := make([]domain.User, 0, len(ms))
	for i := range ms {
		out = append(out, *ms[i].toDomain())
	}
	return out, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var m UserModel
	err := r.db.WithContext(ctx).Preload("Profile").First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, mapErr("repo.FindByID", err)
	}
	return m.toDomain(), nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.UserWithHash, error) {
	var m UserModel
	err := r.db.WithContext(ctx).Preload("Profile").Where("email = ?", email).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, mapErr("repo.FindByEmail", err)
	}
	return &domain.UserWithHash{User: *m.toDomain(), PasswordHash: m.PasswordHash}, nil
}

// Create inserts the user and its profile atomically. A unique violation on
// email surfaces as domain.ErrEmailTaken.
func (r *UserRepo) Create(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	m := UserModel{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: in.PasswordHash,
		Role:         string(role),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&m).Error; err != nil {
			return err
		}
		p := ProfileModel{UserID: m.ID, Bio: in.Bio, AvatarURL: in.AvatarURL}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		m.Profile = &p
		return nil
	})
	if err != nil {
		return nil, mapErr("repo.Create", err)
	}
	return m.toDomain(), nil
}

func (r *UserRepo) Update(ctx context.Context, id uint, p domain.UserPatch) (*domain.User, error) {
	return r.update(ctx, "repo.Update", id, p)
}

func (r *UserRepo) UpdateMe(ctx context.Context, id uint, p domain.MePatch) (*domain.User, error) {
	return r.update(ctx, "repo.UpdateMe", id, p.AsUserPatch())
}

func (r *UserRepo) update(ctx context.Context, op string, id uint, p domain.UserPatch) (*domain.User, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m UserModel
		if err := tx.Select("id").First(&m, id).Error; err != nil {
			return err
		}
		cols := map[string]any{}
		if p.Name.Set {
			cols["name"] = p.Name.Ptr()
		}
		if p.Role.HasValue() {
			cols["role"] = string(p.Role.Value)
		}
		if len(cols) == 0 && p.TouchesProfile() {
			cols["updated_at"] = tx.NowFunc()
		}
		if len(cols) > 0 {
			if err := tx.Model(&UserModel{}).Where("id = ?", id).Updates(cols).Error; err != nil {
				return err
			}
		}
		return upsertProfile(tx, id, p)
	})
	if err != nil {
		return nil, mapErr(op, err)
	}
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.E(domain.KindNotFound, op, nil)
	}
	return u, nil
}

// upsertProfile creates the profile if absent and otherwise only overwrites
// the columns present in the patch.
func upsertProfile(tx *gorm.DB, userID uint, p domain.UserPatch) error {
	prof := ProfileModel{UserID: userID, Bio: p.Bio.Ptr(), AvatarURL: p.AvatarURL.Ptr()}
	var cols []string
	if p.Bio.Set {
		cols = append(cols, "bio")
	}
	if p.AvatarURL.Set {
		cols = append(cols, "avatar_url")
	}
	oc := clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}}
	if len(cols) == 0 {
		oc.DoNothing = true
	} else {
		oc.DoUpdates = clause.AssignmentColumns(append(cols, "updated_at"))
	}
	return tx.Clauses(oc).Create(&prof).Error
}

func (r *UserRepo) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&ProfileModel{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&UserModel{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return mapErr("repo.Delete", err)
}

func (r *UserRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return mapErr("repo.Ping", err)
	}
	return mapErr("repo.Ping", sqlDB.PingContext(ctx))
}
