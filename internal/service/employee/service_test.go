package employee

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/memory"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeService_CreateAndGet(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 20, 1, 0, 0, 0, time.UTC))
	svc := NewEmployeeService(memory.NewEmployeeRepository(clock))
	ctx := context.Background()

	created, err := svc.Create(ctx, employee.CreateEmployeeRequest{FullName: "  Ani Lestari  "})
	require.NoError(t, err)
	assert.Equal(t, "Ani Lestari", created.FullName)
	assert.Equal(t, "2024-05-20T01:00:00Z", created.CreatedAt)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = svc.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEmployeeService_CreateValidation(t *testing.T) {
	svc := NewEmployeeService(memory.NewEmployeeRepository(nil))

	for _, name := range []string{"", "   ", strings.Repeat("a", 101)} {
		_, err := svc.Create(context.Background(), employee.CreateEmployeeRequest{FullName: name})
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs, "name %q", name)
	}

	_, err := svc.Create(context.Background(), employee.CreateEmployeeRequest{FullName: strings.Repeat("a", 100)})
	assert.NoError(t, err)
}
