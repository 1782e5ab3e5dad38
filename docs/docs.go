// Package docs содержит swagger-спецификацию API витрины для /docs.
// Аннотации обработчиков лежат рядом с кодом, файл пересобирается swag init.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"termsOfService": "http://swagger.io/terms/",
		"contact": {
			"name": "API Support",
			"url": "http://www.swagger.io/support",
			"email": "support@swagger.io"
		},
		"license": {
			"name": "MIT",
			"url": "https://opensource.org/licenses/MIT"
		},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/auth/check": {
			"post": {
				"tags": [
					"Auth"
				],
				"summary": "Поиск клиента по последним четырём цифрам",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/auth/register-password": {
			"post": {
				"tags": [
					"Auth"
				],
				"summary": "Регистрация пароля клиента",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/auth/login": {
			"post": {
				"tags": [
					"Auth"
				],
				"summary": "Вход клиента",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/auth/admin": {
			"post": {
				"tags": [
					"Auth"
				],
				"summary": "Вход администратора",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/system/config": {
			"get": {
				"tags": [
					"System"
				],
				"summary": "Системная конфигурация",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/health": {
			"get": {
				"tags": [
					"System"
				],
				"summary": "Готовность витрины",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/me": {
			"get": {
				"tags": [
					"Client"
				],
				"summary": "Профиль клиента",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/me/name": {
			"put": {
				"tags": [
					"Client"
				],
				"summary": "Смена имени",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/me/credentials": {
			"get": {
				"tags": [
					"Client"
				],
				"summary": "Учётные данные по всем сервисам",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/me/credentials/{service}": {
			"get": {
				"tags": [
					"Client"
				],
				"summary": "Учётные данные сервиса",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "service",
						"in": "path",
						"required": true,
						"description": ""
					}
				]
			}
		},
		"/me/games/{game}": {
			"put": {
				"tags": [
					"Client"
				],
				"summary": "Сохранение прогресса игры",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "game",
						"in": "path",
						"required": true,
						"description": ""
					},
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/me/doramas": {
			"get": {
				"tags": [
					"Client"
				],
				"summary": "Списки дорам",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"post": {
				"tags": [
					"Client"
				],
				"summary": "Добавление дорамы",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/me/doramas/{id}": {
			"put": {
				"tags": [
					"Client"
				],
				"summary": "Изменение дорамы",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true,
						"description": ""
					},
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				]
			},
			"delete": {
				"tags": [
					"Client"
				],
				"summary": "Удаление дорамы",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true,
						"description": ""
					}
				]
			}
		},
		"/checkout/quote": {
			"get": {
				"tags": [
					"Client"
				],
				"summary": "Данные для оплаты Pix",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "type",
						"in": "query",
						"required": false,
						"description": ""
					},
					{
						"type": "string",
						"name": "service",
						"in": "query",
						"required": false,
						"description": ""
					}
				]
			}
		},
		"/admin/credentials": {
			"get": {
				"tags": [
					"Admin"
				],
				"summary": "Все учётные данные",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"post": {
				"tags": [
					"Admin"
				],
				"summary": "Добавление учётных данных",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/admin/credentials/bulk": {
			"post": {
				"tags": [
					"Admin"
				],
				"summary": "Пакетная загрузка учётных данных",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/admin/credentials/counts": {
			"get": {
				"tags": [
					"Admin"
				],
				"summary": "Число клиентов на каждых учётных данных",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/credentials/{id}": {
			"put": {
				"tags": [
					"Admin"
				],
				"summary": "Изменение учётных данных",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true,
						"description": ""
					},
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				]
			},
			"delete": {
				"tags": [
					"Admin"
				],
				"summary": "Удаление учётных данных",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true,
						"description": ""
					}
				]
			}
		},
		"/admin/credentials/{id}/users": {
			"get": {
				"tags": [
					"Admin"
				],
				"summary": "Клиенты, получившие учётные данные",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true,
						"description": ""
					}
				]
			}
		},
		"/admin/assignments/{service}": {
			"get": {
				"tags": [
					"Admin"
				],
				"summary": "Распределение учётных данных сервиса",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "service",
						"in": "path",
						"required": true,
						"description": ""
					}
				]
			}
		},
		"/admin/clients": {
			"get": {
				"tags": [
					"Admin"
				],
				"summary": "Все записи клиентов",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"post": {
				"tags": [
					"Admin"
				],
				"summary": "Создание или изменение записи клиента",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/admin/clients/demo": {
			"post": {
				"tags": [
					"Admin"
				],
				"summary": "Создание демонстрационного клиента",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/clients/reset-passwords": {
			"post": {
				"tags": [
					"Admin"
				],
				"summary": "Сброс паролей всех клиентов",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/clients/{id}": {
			"delete": {
				"tags": [
					"Admin"
				],
				"summary": "Мягкое удаление записи клиента",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true,
						"description": ""
					}
				]
			}
		},
		"/admin/clients/{id}/override": {
			"post": {
				"tags": [
					"Admin"
				],
				"summary": "Переключение ручного продления",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true,
						"description": ""
					}
				]
			}
		},
		"/admin/reports/stats": {
			"get": {
				"tags": [
					"Admin"
				],
				"summary": "Сводка для панели администратора",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/reports/expiring": {
			"get": {
				"tags": [
					"Admin"
				],
				"summary": "Отчёт об истекающих подписках",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/system/config": {
			"put": {
				"tags": [
					"Admin"
				],
				"summary": "Сохранение системной конфигурации",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				]
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"description": "Type \"Bearer\" followed by a space and JWT token.",
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo информация об API для swagger.
var SwaggerInfo = &swag.Spec{
	Version:		  "1.0",
	Host:			 "localhost:8080",
	BasePath:		 "/api/v1",
	Schemes:		  []string{},
	Title:			"Storefront API",
	Description:	  "API витрины общих подписок на стриминговые сервисы",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
