package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	lambdapkg "github.com/christophergentle/tpsgraph/internal/lambda"
)

func main() {
	handler, err := lambdapkg.NewGraphHandlerFromSSM(context.Background())
	if err != nil {
		log.Fatalf("Failed to create graph handler: %v", err)
	}
	lambda.Start(handler.HandleRequest)
}
