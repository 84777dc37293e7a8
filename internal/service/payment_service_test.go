package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/gema-content-admin/internal/dto"
)

func TestPaymentServiceCreateAndExport(t *testing.T) {
	f := newContentFixture(t)
	svc := NewPaymentService(f.store, testValidator(), f.bus, testLogger())
	ctx := context.Background()

	course, err := f.courses.Create(ctx, dto.CourseCreateRequest{Title: "Paid course", Price: 25})
	require.NoError(t, err)

	paid, err := svc.Create(ctx, dto.PaymentCreateRequest{UserEmail: "Student@Example.com", CourseID: course.ID, Amount: 25, Currency: "usd", Status: "completed"})
	require.NoError(t, err)
	require.Equal(t, "student@example.com", paid.UserEmail)
	require.Equal(t, "USD", paid.Currency)

	_, err = svc.Create(ctx, dto.PaymentCreateRequest{UserEmail: "late@example.com", Amount: 10, Currency: "EUR"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, dto.PaymentCreateRequest{UserEmail: "ghost@example.com", CourseID: uuid.NewString(), Amount: 1, Currency: "EUR"})
	require.True(t, IsValidationError(err))

	_, err = svc.Create(ctx, dto.PaymentCreateRequest{UserEmail: "not-an-email", Amount: 1, Currency: "EUR"})
	require.True(t, IsValidationError(err))

	withCourse, err := svc.Get(ctx, paid.ID, true)
	require.NoError(t, err)
	require.Equal(t, "Paid course", withCourse.Course.Title)

	refunded, err := svc.Update(ctx, paid.ID, dto.PaymentUpdateRequest{Status: stringPtr("refunded")})
	require.NoError(t, err)
	require.Equal(t, "refunded", refunded.Status)

	data, err := svc.Export(ctx, "refunded")
	require.NoError(t, err)
	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(paymentSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "User Email", rows[0][1])
	require.Equal(t, "student@example.com", rows[1][1])
	require.Equal(t, "refunded", rows[1][5])

	all, err := svc.Export(ctx, "")
	require.NoError(t, err)
	book, err = excelize.OpenReader(bytes.NewReader(all))
	require.NoError(t, err)
	rows, err = book.GetRows(paymentSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	_, err = svc.Export(ctx, "stolen")
	require.True(t, IsValidationError(err))
}
