package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/tieba/internal/model"
	"github.com/d60-Lab/tieba/internal/service"
)

// RegisterValidators 注册 msgtype / notiftype 两个 binding 标签
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("msgtype", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || service.ValidMessageType(s)
	}); err != nil {
		return err
	}
	return v.RegisterValidation("notiftype", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || model.NotificationType(s).Valid()
	})
}
