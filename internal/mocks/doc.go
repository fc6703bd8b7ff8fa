// Package mocks provides shared function-field mocks for the service,
// session and generation interfaces.
//
// Each mock exposes one Fn field per interface method; a test sets only the
// functions it expects to be called:
//
//	photos := &mocks.MockPhotoService{
//	    GetStatusFn: func(ctx context.Context, id uuid.UUID) (*service.StatusView, error) {
//	        return &service.StatusView{TaskID: id, Status: domain.TaskStatusPending}, nil
//	    },
//	}
//
// Simpler mocks such as MockJWTService also fall back to default return
// values when no function is set.
package mocks
