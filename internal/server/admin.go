package server

import (
	"context"
	"crypto/subtle"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/tbcparser/internal/common"
	"github.com/joseph-ayodele/tbcparser/internal/dictionary"
)

type sampleResolution struct {
	Alias       string `json:"alias"`
	Operator    string `json:"operator,omitempty"`
	Application string `json:"application,omitempty"`
	Found       bool   `json:"found"`
}

type reloadResponse struct {
	dictionary.ReloadResult
	Path    string             `json:"path"`
	Samples []sampleResolution `json:"samples"`
}

// authorizeAdmin checks the "authorization: Bearer <token>" metadata entry.
func (s *ParserServer) authorizeAdmin(ctx context.Context) error {
	if s.adminToken == "" {
		return status.Error(codes.PermissionDenied, "dictionary reload is disabled")
	}
	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get("authorization")
	if len(values) == 0 {
		return status.Error(codes.Unauthenticated, "missing authorization token")
	}
	token, ok := strings.CutPrefix(strings.TrimSpace(values[0]), "Bearer ")
	if !ok {
		return status.Error(codes.Unauthenticated, "authorization must be a bearer token")
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(s.adminToken)) != 1 {
		return status.Error(codes.PermissionDenied, "invalid admin token")
	}
	return nil
}

// ReloadDictionary re-reads the alias dictionary from its source path.
func (s *ParserServer) ReloadDictionary(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if err := s.authorizeAdmin(ctx); err != nil {
		s.logger.Warn("grpc.reload.denied", "code", status.Code(err))
		return nil, err
	}

	res, err := s.dict.Reload()
	if err != nil {
		return nil, common.ToStatus(err)
	}
	s.receipts.FlushOperatorCache()

	resp := reloadResponse{ReloadResult: res, Path: s.dict.Path(), Samples: make([]sampleResolution, 0, len(dictionary.SampleAliases))}
	for _, alias := range dictionary.SampleAliases {
		sample := sampleResolution{Alias: alias}
		if entry, ok := s.dict.Lookup(alias); ok {
			sample.Found = true
			sample.Operator = entry.Operator
			sample.Application = entry.Application
		}
		resp.Samples = append(resp.Samples, sample)
	}

	out, err := toStruct(resp)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return out, nil
}
