package docs

//go:generate swag init --dir ../,../internal/adapter/http/handler --generalInfo docs/swagger_auth.go --output . --instanceName auth --outputTypes go

// @title           Authentication Service API
// @version         1.0
// @description     Registers users and issues HS256 signed access tokens. Tokens expire 4 hours after issuance and are accepted as Bearer credentials by protected routes.

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3005
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
