package util

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

func Ptr[T any](v T) *T {
	return &v
}

// InitRSAPrivateKey parses a PEM-encoded RSA private key in either PKCS1 or
// PKCS8 form.
func InitRSAPrivateKey(pemStr string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block containing private key")
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		keyInterface, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %v", err)
		}
		var ok bool
		key, ok = keyInterface.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("private key is not RSA")
		}
	}
	return key, nil
}

// MongoCleanup drops the given database. Test helper.
func MongoCleanup(mongodbClient *mongo.Client, dbName string) error {
	return mongodbClient.Database(dbName).Drop(nil)
}
