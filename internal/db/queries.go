package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/planwell/planwell/internal/course"
	"github.com/planwell/planwell/internal/errors"
	"github.com/planwell/planwell/internal/travel"
)

// ReplaceAllCourses swaps the stored catalog feed for a new one inside a
// single transaction. Each raw record is persisted as its verbatim JSON
// document so a reload round-trips exactly what was imported; duplicate and
// malformed records are the catalog's problem, not the store's.
func ReplaceAllCourses(db *sql.DB, docs []json.RawMessage) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM courses"); err != nil {
		return 0, errors.NewInternal(err)
	}

	now := time.Now().Unix()
	stmt, err := tx.Prepare("INSERT INTO courses (course_id, doc, imported_at) VALUES (?, ?, ?)")
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	defer stmt.Close()

	count := 0
	for _, doc := range docs {
		var raw course.RawCourse
		if err := json.Unmarshal(doc, &raw); err != nil {
			continue
		}
		if _, err := stmt.Exec(raw.ID(), string(doc), now); err != nil {
			return 0, errors.NewInternal(err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.NewInternal(err)
	}
	return count, nil
}

// LoadRawCourses returns every stored course record in feed order.
func LoadRawCourses(db *sql.DB) ([]course.RawCourse, error) {
	rows, err := db.Query("SELECT doc FROM courses ORDER BY seq")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []course.RawCourse
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, errors.NewInternal(err)
		}
		var raw course.RawCourse
		if err := json.Unmarshal([]byte(doc), &raw); err != nil {
			continue
		}
		out = append(out, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// CountCourses returns the number of stored course records.
func CountCourses(db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM courses").Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// InsertTravelRequest stores a new travel request.
func InsertTravelRequest(db *sql.DB, r travel.Request) error {
	query := `
		INSERT INTO travel_requests (
			id, student_id, course_id, origin, destination,
			reason, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query,
		r.ID, r.StudentID, r.CourseID, r.Origin, r.Destination,
		toNullString(r.Reason), r.Status, r.CreatedAt.Unix(), r.UpdatedAt.Unix(),
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetTravelRequest retrieves a travel request by ID.
func GetTravelRequest(db *sql.DB, id string) (travel.Request, error) {
	query := `
		SELECT id, student_id, course_id, origin, destination,
			reason, status, created_at, updated_at
		FROM travel_requests
		WHERE id = ?
	`
	r, err := scanRequest(db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return travel.Request{}, errors.NewRequestNotFound(id)
	}
	if err != nil {
		return travel.Request{}, errors.NewInternal(err)
	}
	return r, nil
}

// ListTravelRequestsByStudent returns a student's requests, newest first.
func ListTravelRequestsByStudent(db *sql.DB, studentID string) ([]travel.Request, error) {
	query := `
		SELECT id, student_id, course_id, origin, destination,
			reason, status, created_at, updated_at
		FROM travel_requests
		WHERE student_id = ?
		ORDER BY created_at DESC, id DESC
	`
	return listRequests(db, query, studentID)
}

// ListTravelRequestsByCourse returns a course's requests, newest first.
func ListTravelRequestsByCourse(db *sql.DB, courseID string) ([]travel.Request, error) {
	query := `
		SELECT id, student_id, course_id, origin, destination,
			reason, status, created_at, updated_at
		FROM travel_requests
		WHERE course_id = ?
		ORDER BY created_at DESC, id DESC
	`
	return listRequests(db, query, courseID)
}

// UpdateTravelRequestStatus moves a request to a new status and bumps
// updated_at. The status must be one of the known request statuses.
func UpdateTravelRequestStatus(db *sql.DB, id, status string) error {
	if !travel.ValidStatus(status) {
		return errors.NewInvalidRequest("unknown travel request status: " + status)
	}

	query := `
		UPDATE travel_requests
		SET status = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := db.Exec(query, status, time.Now().Unix(), id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewRequestNotFound(id)
	}
	return nil
}

func listRequests(db *sql.DB, query string, arg any) ([]travel.Request, error) {
	rows, err := db.Query(query, arg)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []travel.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(row scanner) (travel.Request, error) {
	var (
		r         travel.Request
		reason    sql.NullString
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&r.ID, &r.StudentID, &r.CourseID, &r.Origin, &r.Destination,
		&reason, &r.Status, &createdAt, &updatedAt,
	)
	if err != nil {
		return travel.Request{}, err
	}
	r.Reason = reason.String
	r.CreatedAt = time.Unix(createdAt, 0).UTC()
	r.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return r, nil
}

// toNullString converts an empty string to SQL NULL.
func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
