package minio

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/hbond-profiler/internal/config"
	"github.com/turtacn/hbond-profiler/internal/testutil"
	apperrors "github.com/turtacn/hbond-profiler/pkg/errors"
)

type ClientTestSuite struct {
	suite.Suite
	api *fakeStore
	log *testutil.MockLogger
	cfg config.MinIOConfig
	ctx context.Context
}

func (s *ClientTestSuite) SetupTest() {
	s.api = new(fakeStore)
	s.log = testutil.NewMockLogger()
	s.cfg = config.MinIOConfig{Bucket: "exports"}
	s.ctx = context.Background()
}

func (s *ClientTestSuite) TestApplyDefaults() {
	cfg := config.MinIOConfig{}
	applyDefaults(&cfg)

	s.Equal("us-east-1", cfg.Region)
	s.Equal(config.DefaultMinIOBucket, cfg.Bucket)
	s.Equal(config.DefaultPresignExpiry, cfg.PresignExpiry)
}

func (s *ClientTestSuite) TestNewClientWithAPI_BucketExists() {
	s.api.On("BucketExists", s.ctx, "exports").Return(true, nil)

	c, err := NewClientWithAPI(s.ctx, s.api, s.cfg, s.log)
	s.Require().NoError(err)
	s.Equal("exports", c.Bucket())
	s.api.AssertNotCalled(s.T(), "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	s.api.AssertNotCalled(s.T(), "SetBucketLifecycle", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ClientTestSuite) TestNewClientWithAPI_CreatesBucketAndLifecycle() {
	s.cfg.ExportExpiryDays = 14
	s.api.On("BucketExists", s.ctx, "exports").Return(false, nil)
	s.api.On("MakeBucket", s.ctx, "exports", minio.MakeBucketOptions{Region: "us-east-1"}).Return(nil)
	s.api.On("SetBucketLifecycle", s.ctx, "exports", mock.MatchedBy(func(lc *lifecycle.Configuration) bool {
		return len(lc.Rules) == 1 && lc.Rules[0].Expiration.Days == 14 && lc.Rules[0].Status == "Enabled"
	})).Return(nil)

	_, err := NewClientWithAPI(s.ctx, s.api, s.cfg, s.log)
	s.Require().NoError(err)
	s.True(s.log.HasMessage("info", "created bucket"))
	s.api.AssertExpectations(s.T())
}

func (s *ClientTestSuite) TestNewClientWithAPI_LifecycleFailureIsLogged() {
	s.cfg.ExportExpiryDays = 1
	s.api.On("BucketExists", s.ctx, "exports").Return(true, nil)
	s.api.On("SetBucketLifecycle", s.ctx, "exports", mock.Anything).Return(errors.New("not implemented"))

	_, err := NewClientWithAPI(s.ctx, s.api, s.cfg, s.log)
	s.Require().NoError(err)
	s.True(s.log.HasMessage("warn", "failed to set lifecycle for exports bucket"))
}

func (s *ClientTestSuite) TestNewClientWithAPI_MakeBucketFailure() {
	s.api.On("BucketExists", s.ctx, "exports").Return(false, nil)
	s.api.On("MakeBucket", s.ctx, "exports", mock.Anything).Return(errors.New("access denied"))

	_, err := NewClientWithAPI(s.ctx, s.api, s.cfg, s.log)
	s.True(apperrors.IsCode(err, apperrors.CodeStorageError))
}

func (s *ClientTestSuite) TestHealthCheck() {
	s.api.On("BucketExists", s.ctx, "exports").Return(true, nil).Once()
	c, err := NewClientWithAPI(s.ctx, s.api, s.cfg, s.log)
	s.Require().NoError(err)

	s.api.On("BucketExists", s.ctx, "exports").Return(true, nil).Once()
	status, err := c.HealthCheck(s.ctx)
	s.NoError(err)
	s.True(status.Healthy)

	s.api.On("BucketExists", s.ctx, "exports").Return(false, nil).Once()
	status, err = c.HealthCheck(s.ctx)
	s.Equal(ErrBucketNotFound, err)
	s.False(status.Healthy)
	s.Contains(status.Error, "missing")

	s.api.On("BucketExists", s.ctx, "exports").Return(false, errors.New("timeout")).Once()
	_, err = c.HealthCheck(s.ctx)
	s.True(apperrors.IsCode(err, apperrors.CodeStorageError))
}

func (s *ClientTestSuite) TestPresignedGetURL_DefaultExpiry() {
	s.api.On("BucketExists", s.ctx, "exports").Return(true, nil)
	c, err := NewClientWithAPI(s.ctx, s.api, s.cfg, s.log)
	s.Require().NoError(err)

	u, _ := url.Parse("http://minio:9000/exports/a.csv?X-Amz-Signature=abc")
	s.api.On("PresignedGetObject", s.ctx, "exports", "a.csv", time.Hour, url.Values(nil)).Return(u, nil)

	got, err := c.PresignedGetURL(s.ctx, "a.csv", 0)
	s.NoError(err)
	s.Equal(u.String(), got)
}

func (s *ClientTestSuite) TestClosedClient() {
	s.api.On("BucketExists", s.ctx, "exports").Return(true, nil)
	c, err := NewClientWithAPI(s.ctx, s.api, s.cfg, s.log)
	s.Require().NoError(err)
	s.Require().NoError(c.Close())

	_, err = c.PresignedGetURL(s.ctx, "a.csv", 0)
	s.Equal(ErrMinIOClientClosed, err)
	_, err = c.HealthCheck(s.ctx)
	s.Equal(ErrMinIOClientClosed, err)
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func TestNewClient_InvalidEndpoint(t *testing.T) {
	_, err := NewClient(config.MinIOConfig{Endpoint: "bad endpoint:9000"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minio")
}

//Personal.AI order the ending
