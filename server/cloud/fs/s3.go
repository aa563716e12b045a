// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package fs

import (
	"bytes"
	"fmt"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"path"
)

type S3Filesystem struct {
	svc          *s3.S3
	staticBucket string
}

func NewS3Filesystem(session *session.Session, stage string) (*S3Filesystem, error) {
	return &S3Filesystem{
		svc:          s3.New(session),
		staticBucket: "tilestream-" + stage + "-static",
	}, nil
}

// Patch S3's limited vocabulary of default content types
var s3ContentTypes = map[string]string{
	".json": "application/json",
	".png":  "image/png",
}

// ContentType of filename, or nil to let S3 decide.
func ContentType(filename string) *string {
	if mime, ok := s3ContentTypes[path.Ext(filename)]; ok {
		return aws.String(mime)
	}
	return nil
}

func (s3Filesystem *S3Filesystem) UploadStaticFile(filename string, secondsCache int, data []byte) error {
	req, _ := s3Filesystem.svc.PutObjectRequest(&s3.PutObjectInput{
		Bucket:       aws.String(s3Filesystem.staticBucket),
		Key:          aws.String(filename),
		Body:         bytes.NewReader(data),
		CacheControl: aws.String(fmt.Sprintf("no-transform, public, max-age=%d", secondsCache)),
		ContentType:  ContentType(filename),
	})
	return req.Send()
}
