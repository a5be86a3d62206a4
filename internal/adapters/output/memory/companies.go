package memory

import (
	"context"

	"puzzle-rewards/internal/core/domain/entities"
	"puzzle-rewards/internal/core/domain/exceptions"
)

type companyRepository struct {
	b binding
}

func (r *companyRepository) GetByID(_ context.Context, id string) (*entities.Company, error) {
	var (
		c  entities.Company
		ok bool
	)
	r.b.read(func(st *state) {
		c, ok = st.companies[id]
	})
	if !ok {
		return nil, exceptions.NotFound(exceptions.ResourceCompany, id)
	}
	return &c, nil
}
