package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/garnizeh/staffdir/internal/repository/sqlfilter"
	"github.com/garnizeh/staffdir/pkg/models"
	"github.com/garnizeh/staffdir/pkg/repository"
)

const employeeColumns = `id, name, email, mobile, designation, course, gender, image_ref, created_at, active`

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(s scanner) (*models.Employee, error) {
	var e models.Employee
	var created int64
	if err := s.Scan(&e.ID, &e.Name, &e.Email, &e.Mobile, &e.Designation, &e.Course, &e.Gender, &e.ImageRef, &created, &e.Active); err != nil {
		return nil, err
	}
	e.CreatedAt = time.UnixMilli(created).UTC()
	return &e, nil
}

func (r *Repo) Insert(ctx context.Context, in models.EmployeeInput) (*models.Employee, error) {
	id, err := r.newID()
	if err != nil {
		return nil, fmt.Errorf("generate employee id: %w", err)
	}

	e := &models.Employee{
		ID:          id,
		Name:        in.Name,
		Email:       in.Email,
		Mobile:      in.Mobile,
		Designation: in.Designation,
		Course:      in.Course,
		Gender:      in.Gender,
		ImageRef:    in.ImageRef,
		CreatedAt:   r.now(),
		Active:      true,
	}

	q := sqlfilter.New(r.dialect)
	query := fmt.Sprintf(`INSERT INTO employees (%s) VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)`, employeeColumns,
		q.Bind(e.ID), q.Bind(e.Name), q.Bind(e.Email), q.Bind(e.Mobile), q.Bind(e.Designation),
		q.Bind(e.Course), q.Bind(string(e.Gender)), q.Bind(e.ImageRef), q.Bind(e.CreatedAt.UnixMilli()), q.Bind(e.Active))

	if _, err := r.conn.Exec(ctx, query, q.Args...); err != nil {
		if r.isUnique(err) {
			return nil, &repository.ConstraintError{Field: "email"}
		}
		return nil, fmt.Errorf("insert employee: %w", err)
	}

	return e, nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	query := fmt.Sprintf(`SELECT %s FROM employees WHERE id = %s`, employeeColumns, r.dialect.Placeholder(1))
	e, err := scanEmployee(r.conn.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get employee %s: %w", id, err)
	}
	return e, nil
}

func (r *Repo) FindMany(ctx context.Context, f repository.Filter, s repository.Sort, offset, limit int) ([]models.Employee, error) {
	out := make([]models.Employee, 0)
	if limit <= 0 {
		return out, nil
	}
	if offset < 0 {
		offset = 0
	}

	q := sqlfilter.New(r.dialect)
	where, err := q.Where(f)
	if err != nil {
		return nil, err
	}
	order, err := r.dialect.OrderBy(s)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM employees WHERE %s ORDER BY %s LIMIT %s OFFSET %s`,
		employeeColumns, where, order, q.Bind(limit), q.Bind(offset))
	r.logger.Debug("find employees", slog.String("where", where), slog.String("order", order), slog.Int("offset", offset), slog.Int("limit", limit))

	rows, err := r.conn.QueryRows(ctx, query, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	return out, nil
}

func (r *Repo) Count(ctx context.Context, f repository.Filter) (int64, error) {
	q := sqlfilter.New(r.dialect)
	where, err := q.Where(f)
	if err != nil {
		return 0, err
	}
	var cnt int64
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE `+where, q.Args...).Scan(&cnt); err != nil {
		return 0, fmt.Errorf("count employees: %w", err)
	}
	return cnt, nil
}

func (r *Repo) Update(ctx context.Context, id string, p models.EmployeePatch) (*models.Employee, error) {
	if p.Empty() {
		return r.FindByID(ctx, id)
	}

	q := sqlfilter.New(r.dialect)
	var sets []string
	set := func(col string, v any) {
		sets = append(sets, col+" = "+q.Bind(v))
	}
	if p.Name != nil {
		set("name", *p.Name)
	}
	if p.Email != nil {
		set("email", *p.Email)
	}
	if p.Mobile != nil {
		set("mobile", *p.Mobile)
	}
	if p.Designation != nil {
		set("designation", *p.Designation)
	}
	if p.Course != nil {
		set("course", *p.Course)
	}
	if p.Gender != nil {
		set("gender", string(*p.Gender))
	}
	if p.ImageRef != nil {
		set("image_ref", *p.ImageRef)
	}
	if p.Active != nil {
		set("active", *p.Active)
	}
	update := fmt.Sprintf(`UPDATE employees SET %s WHERE id = %s`, strings.Join(sets, ", "), q.Bind(id))

	tx, err := r.conn.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, update, q.Args...)
	if err != nil {
		if r.isUnique(err) {
			return nil, &repository.ConstraintError{Field: "email"}
		}
		return nil, fmt.Errorf("update employee %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update employee %s: %w", id, err)
	}
	if n == 0 {
		return nil, repository.ErrNotFound
	}

	sel := fmt.Sprintf(`SELECT %s FROM employees WHERE id = %s`, employeeColumns, r.dialect.Placeholder(1))
	e, err := scanEmployee(tx.QueryRowContext(ctx, sel, id))
	if err != nil {
		return nil, fmt.Errorf("reload employee %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update %s: %w", id, err)
	}
	return e, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	res, err := r.conn.Exec(ctx, fmt.Sprintf(`DELETE FROM employees WHERE id = %s`, r.dialect.Placeholder(1)), id)
	if err != nil {
		return fmt.Errorf("delete employee %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete employee %s: %w", id, err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
