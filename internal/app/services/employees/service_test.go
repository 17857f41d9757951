package employees

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeflow/storeflow/internal/apperr"
	"github.com/storeflow/storeflow/internal/app/domain/employee"
	"github.com/storeflow/storeflow/internal/app/storage/memory"
	"github.com/storeflow/storeflow/pkg/logger"
)

var testSecret = []byte("test-secret")

func newTestService(t *testing.T) *Service {
	t.Helper()
	return New(memory.New(), testSecret, logger.NewDefault("employees-test"))
}

func TestCreateHashesPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, employee.Employee{EmployeeID: "E1", Name: "Dana"}, "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, created.PasswordHash)
	assert.NotEqual(t, "hunter2", created.PasswordHash)

	_, err = svc.Create(ctx, employee.Employee{EmployeeID: "E2", Name: "Eli"}, "")
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, employee.Employee{EmployeeID: "E1", Name: "Dana"}, "hunter2")
	require.NoError(t, err)

	session, err := svc.Login(ctx, "E1", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "E1", session.EmployeeID)
	assert.Equal(t, "Dana", session.Name)

	var claims Claims
	parsed, err := jwt.ParseWithClaims(session.Token, &claims, func(token *jwt.Token) (interface{}, error) {
		return testSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	assert.Equal(t, "E1", claims.Subject)
	assert.Equal(t, RoleEmployee, claims.Role)
	assert.Equal(t, "Dana", claims.Name)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, employee.Employee{EmployeeID: "E1", Name: "Dana"}, "hunter2")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "E1", "wrong")
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))

	_, err = svc.Login(ctx, "nobody", "hunter2")
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))
}

func TestUpdateKeepsHashWithoutPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, employee.Employee{EmployeeID: "E1", Name: "Dana"}, "hunter2")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, employee.Employee{EmployeeID: "E1", Name: "Dana R."}, "")
	require.NoError(t, err)
	assert.Equal(t, created.PasswordHash, updated.PasswordHash)

	_, err = svc.Login(ctx, "E1", "hunter2")
	assert.NoError(t, err)
}
