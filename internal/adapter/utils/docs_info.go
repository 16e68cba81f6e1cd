// @title           DocAssist API
// @version         1.0
// @description     Document ingestion and retrieval-augmented chat for the CeeS and ChriS assistants.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email   ank.github@gmail.com

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package utils

//run postgres with pgvector
//docker run -p 5432:5432 -e POSTGRES_USER=docassist -e POSTGRES_PASSWORD=docassist -e POSTGRES_DB=docassist -d pgvector/pgvector:pg16

//run redis
//docker run -p 6379:6379 -d redis

//run qdrant (semantic answer cache, optional)
//docker run -p 6333:6333 -p 6334:6334 -v vectorDBData:/qdrant/storage qdrant/qdrant

//swagger init
//swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs
