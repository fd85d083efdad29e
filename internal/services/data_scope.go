package services

import (
	"context"

	"go.uber.org/zap"

	"admin-backoffice/internal/authz"
	"admin-backoffice/internal/entities"
	"admin-backoffice/internal/hierarchy"
	"admin-backoffice/internal/repositories"
)

type DataScopeServiceInterface interface {
	Resolve(ctx context.Context, p authz.Principal) (authz.ScopeFilter, error)
}

// DataScopeService подготавливает данные для authz.Resolve: потомков департамента
// и департаменты роли. Деревья не кешируются и читаются заново на каждый запрос.
type DataScopeService struct {
	deptRepo repositories.DepartmentRepositoryInterface
	roleRepo repositories.RoleRepositoryInterface
	logger   *zap.Logger
}

func NewDataScopeService(
	deptRepo repositories.DepartmentRepositoryInterface,
	roleRepo repositories.RoleRepositoryInterface,
	logger *zap.Logger,
) DataScopeServiceInterface {
	return &DataScopeService{deptRepo: deptRepo, roleRepo: roleRepo, logger: logger}
}

func (s *DataScopeService) Resolve(ctx context.Context, p authz.Principal) (authz.ScopeFilter, error) {
	if p.IsSuperAdmin {
		return authz.Unrestricted(), nil
	}

	var descendants, custom []uint64
	switch p.DataScope {
	case entities.DataScopeDeptAndChildren:
		if p.DepartmentID == 0 {
			break
		}
		all, err := s.deptRepo.ListAll(ctx)
		if err != nil {
			return authz.DepartmentIn(), err
		}
		descendants, err = hierarchy.DescendantIDs(all, p.DepartmentID)
		if err != nil {
			s.logger.Error("DataScopeService: цикл в дереве департаментов", zap.Uint64("departmentID", p.DepartmentID), zap.Error(err))
			return authz.DepartmentIn(), err
		}
	case entities.DataScopeCustom:
		ids, err := s.roleRepo.DepartmentIDs(ctx, p.RoleID)
		if err != nil {
			return authz.DepartmentIn(), err
		}
		custom = ids
		if len(custom) == 0 {
			s.logger.Debug("DataScopeService: у роли нет департаментов, область пуста", zap.Uint64("roleID", p.RoleID))
		}
	}

	return authz.Resolve(p.DataScope, p.UserID, p.DepartmentID, descendants, custom), nil
}
