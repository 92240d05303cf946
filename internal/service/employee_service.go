package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/asset-tracker-api/internal/models"
	"github.com/noah-isme/asset-tracker-api/pkg/database"
	appErrors "github.com/noah-isme/asset-tracker-api/pkg/errors"
)

type employeeRepository interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error)
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	Create(ctx context.Context, employee *models.Employee) error
	Update(ctx context.Context, employee *models.Employee) error
	Delete(ctx context.Context, tx *sqlx.Tx, id string) error
}

type heldAssetRepository interface {
	ListByHolderForUpdate(ctx context.Context, tx *sqlx.Tx, employeeID string) ([]models.Asset, error)
	Update(ctx context.Context, tx *sqlx.Tx, asset *models.Asset) error
}

// EmployeeRequest is the payload for creating and updating employees.
type EmployeeRequest struct {
	FirstName   string  `json:"first_name" validate:"required,max=50"`
	LastName    string  `json:"last_name" validate:"max=50"`
	Designation string  `json:"designation" validate:"required,max=100"`
	Section     string  `json:"section" validate:"max=100"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone" validate:"omitempty,max=15"`
}

// normalized trims every field; blank email and phone become absent.
func (r EmployeeRequest) normalized() EmployeeRequest {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Designation = strings.TrimSpace(r.Designation)
	r.Section = strings.TrimSpace(r.Section)
	r.Email = blankToNil(r.Email)
	r.Phone = blankToNil(r.Phone)
	return r
}

// EmployeeService handles employee use-cases.
type EmployeeService struct {
	db        txProvider
	repo      employeeRepository
	assets    heldAssetRepository
	recorder  *AuditRecorder
	notifier  *ChangeNotifier
	validator *validator.Validate
	logger    *zap.Logger
}

func NewEmployeeService(db txProvider, repo employeeRepository, assets heldAssetRepository, recorder *AuditRecorder, notifier *ChangeNotifier, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{db: db, repo: repo, assets: assets, recorder: recorder, notifier: notifier, validator: validate, logger: logger}
}

func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, *models.Pagination, error) {
	filter.Page, filter.PageSize = models.NormalizePage(filter.Page, filter.PageSize)
	employees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list employees")
	}
	return employees, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, internalError(err, "failed to load employee")
	}
	return employee, nil
}

func (s *EmployeeService) Create(ctx context.Context, req EmployeeRequest) (*models.Employee, error) {
	req = req.normalized()
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid employee payload")
	}
	employee := &models.Employee{}
	applyEmployeeRequest(employee, req)
	if err := s.repo.Create(ctx, employee); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "employee with this name already exists")
		}
		return nil, internalError(err, "failed to create employee")
	}
	s.invalidate(ctx)
	return employee, nil
}

func (s *EmployeeService) Update(ctx context.Context, id string, req EmployeeRequest) (*models.Employee, error) {
	req = req.normalized()
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid employee payload")
	}
	employee, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyEmployeeRequest(employee, req)
	if err := s.repo.Update(ctx, employee); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "employee with this name already exists")
		}
		return nil, internalError(err, "failed to update employee")
	}
	s.invalidate(ctx)
	return employee, nil
}

// Delete unassigns every asset the employee holds, recording a transfer for
// each, then removes the employee. Both happen in one transaction.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	var (
		entries []models.AssetHistory
		tags    = make(map[string]string)
	)
	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		held, err := s.assets.ListByHolderForUpdate(ctx, tx, id)
		if err != nil {
			return internalError(err, "failed to load employee assets")
		}
		for _, before := range held {
			after := before
			setHolder(&after, nil)
			if err := s.assets.Update(ctx, tx, &after); err != nil {
				return internalError(err, "failed to unassign asset")
			}
			recorded, err := s.recorder.RecordUpdate(ctx, tx, before, after)
			if err != nil {
				return internalError(err, "failed to record asset history")
			}
			entries = append(entries, recorded...)
			tags[after.ID] = after.AssetTag
		}
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return internalError(err, "failed to delete employee")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.notifier.Committed(ctx, entries, tags)
	s.logger.Info("employee deleted", zap.String("employee_id", id), zap.Int("unassigned_assets", len(tags)))
	return nil
}

func (s *EmployeeService) invalidate(ctx context.Context) {
	s.notifier.Committed(ctx, nil, nil)
}

func applyEmployeeRequest(employee *models.Employee, req EmployeeRequest) {
	employee.FirstName = req.FirstName
	employee.LastName = req.LastName
	employee.Designation = req.Designation
	employee.Section = req.Section
	employee.Email = req.Email
	employee.Phone = req.Phone
}
