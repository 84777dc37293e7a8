package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-content-admin/internal/dto"
)

func TestCertificateTemplateDefaultIsExclusivePerCourse(t *testing.T) {
	f := newContentFixture(t)
	svc := NewCertificateTemplateService(f.store, testValidator(), NewMediaPolicy(0, 0), f.bus, testLogger())
	ctx := context.Background()

	course, err := f.courses.Create(ctx, dto.CourseCreateRequest{Title: "Certified"})
	require.NoError(t, err)

	global, err := svc.Create(ctx, dto.CertificateTemplateCreateRequest{Name: "Global", IsDefault: true})
	require.NoError(t, err)
	first, err := svc.Create(ctx, dto.CertificateTemplateCreateRequest{Name: "First", CourseID: course.ID, IsDefault: true})
	require.NoError(t, err)
	second, err := svc.Create(ctx, dto.CertificateTemplateCreateRequest{Name: "Second", CourseID: course.ID, Body: "<b>Well done</b><script>x</script>"})
	require.NoError(t, err)
	require.Equal(t, "<b>Well done</b>", second.Body)

	promoted, err := svc.Update(ctx, second.ID, dto.CertificateTemplateUpdateRequest{IsDefault: boolPtr(true)})
	require.NoError(t, err)
	require.True(t, promoted.IsDefault)

	demoted, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	require.False(t, demoted.IsDefault)

	untouched, err := svc.Get(ctx, global.ID)
	require.NoError(t, err)
	require.True(t, untouched.IsDefault)

	_, err = svc.Create(ctx, dto.CertificateTemplateCreateRequest{Name: "Bad background", Background: "data:image/png;base64,bm90IGFuIGltYWdl"})
	require.True(t, IsValidationError(err))

	require.NoError(t, svc.Delete(ctx, first.ID))
	require.ErrorIs(t, svc.Delete(ctx, first.ID), ErrCertificateTemplateNotFound)
}

func boolPtr(v bool) *bool { return &v }
